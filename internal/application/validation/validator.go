package validation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// ReasonSeparator joins the reasons of every gate that fired
const ReasonSeparator = " | "

// Reason prefixes produced by the gates
const (
	ReasonExtractionFailed   = "receipt extraction failed"
	ReasonMissingField       = "missing field"
	ReasonExceedsLimit       = "exceeds policy limit"
	ReasonDisallowedCategory = "disallowed category"
	ReasonDisallowedKeyword  = "disallowed keyword match"
)

// gate is one policy check; check returns zero or more reasons
type gate struct {
	name  string
	check func(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) []string
}

// gates are evaluated in this order, all of them, for every record
var gates = []gate{
	{name: "data quality", check: checkDataQuality},
	{name: "amount", check: checkAmount},
	{name: "category", check: checkCategory},
	{name: "keyword", check: checkKeywords},
}

// Validator classifies expense records against a rule set
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a new policy validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate returns a copy of record with Status and ExceptionReason set.
// The input is not modified and the result depends only on the record's
// extracted data and rules, so re-validation yields the same verdict. Any
// earlier verdict or review decision on the input is discarded.
func (v *Validator) Validate(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) *entity.ExpenseRecord {
	out := record.Clone()
	out.Status = entity.StatusPending
	out.ExceptionReason = ""
	out.ReviewDecision = nil

	var reasons, fired []string
	for _, g := range gates {
		if r := g.check(out, rules); len(r) > 0 {
			reasons = append(reasons, r...)
			fired = append(fired, g.name)
		}
	}

	if len(reasons) == 0 {
		out.Status = entity.StatusAccepted
		v.logger.Debug("Expense accepted", zap.String("expense_id", out.ExpenseID))
		return out
	}

	out.Status = entity.StatusException
	out.ExceptionReason = strings.Join(reasons, ReasonSeparator)

	v.logger.Info("Expense flagged",
		zap.String("expense_id", out.ExpenseID),
		zap.Strings("gates", fired),
		zap.String("reason", out.ExceptionReason))

	return out
}

func checkDataQuality(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) []string {
	var reasons []string
	if record.ExtractionFailed {
		reasons = append(reasons, ReasonExtractionFailed)
	}
	for _, field := range rules.RequiredFields {
		if !record.HasField(field) {
			reasons = append(reasons, fmt.Sprintf("%s: %s", ReasonMissingField, field))
		}
	}
	return reasons
}

func checkAmount(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) []string {
	if record.Amount == nil || rules.MaxMealAmount <= 0 || *record.Amount <= rules.MaxMealAmount {
		return nil
	}
	return []string{fmt.Sprintf("%s (%.2f > %.2f)", ReasonExceedsLimit, *record.Amount, rules.MaxMealAmount)}
}

func checkCategory(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) []string {
	if record.Category == nil || strings.TrimSpace(*record.Category) == "" || rules.AllowsCategory(*record.Category) {
		return nil
	}
	return []string{fmt.Sprintf("%s: %s", ReasonDisallowedCategory, *record.Category)}
}

func checkKeywords(record *entity.ExpenseRecord, rules entity.PolicyRuleSet) []string {
	texts := make([]string, 0, len(record.Items)+1)
	if record.Vendor != nil {
		texts = append(texts, strings.ToLower(*record.Vendor))
	}
	for _, item := range record.Items {
		texts = append(texts, strings.ToLower(item))
	}

	var reasons []string
	for _, kw := range rules.DisallowedKeywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		for _, text := range texts {
			if strings.Contains(text, needle) {
				reasons = append(reasons, fmt.Sprintf("%s: %s", ReasonDisallowedKeyword, kw))
				break
			}
		}
	}
	return reasons
}
