package entity

import "strings"

// Status is the validation verdict carried by an ExpenseRecord
type Status string

// Status constants for ExpenseRecord
const (
	StatusPending   Status = "Pending"
	StatusAccepted  Status = "Accepted"
	StatusException Status = "Exception"
)

// Decision is a reviewer's verdict on an exception
type Decision string

// Decision constants for ReviewDecision
const (
	DecisionApprove Decision = "Approve"
	DecisionReject  Decision = "Reject"
)

// IsValid reports whether d is Approve or Reject
func (d Decision) IsValid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// ParseDecision accepts the usual spellings of approve and reject
func ParseDecision(s string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved", "a", "y", "yes":
		return DecisionApprove, true
	case "reject", "rejected", "r", "n", "no":
		return DecisionReject, true
	}
	return "", false
}

// PolicySource tells whether a rule set came from a document or the defaults
type PolicySource string

// PolicySource constants
const (
	PolicySourceParsed  PolicySource = "Parsed"
	PolicySourceDefault PolicySource = "Default"
)

// Canonical expense field names used by PolicyRuleSet.RequiredFields
const (
	FieldVendor      = "vendor"
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldItems       = "items"
	FieldSubtotal    = "subtotal"
	FieldTaxes       = "taxes"
	FieldTips        = "tips"
	FieldSubmittedBy = "submitted_by"
)

// canonicalFields is the fixed ordering used when reporting missing fields
var canonicalFields = []string{
	FieldVendor,
	FieldDate,
	FieldAmount,
	FieldCategory,
	FieldItems,
	FieldSubtotal,
	FieldTaxes,
	FieldTips,
	FieldSubmittedBy,
}

var fieldAliases = map[string]string{
	"vendor":        FieldVendor,
	"merchant":      FieldVendor,
	"merchant name": FieldVendor,
	"store":         FieldVendor,
	"date":          FieldDate,
	"expense date":  FieldDate,
	"amount":        FieldAmount,
	"total":         FieldAmount,
	"total amount":  FieldAmount,
	"category":      FieldCategory,
	"items":         FieldItems,
	"item":          FieldItems,
	"itemized":      FieldItems,
	"line items":    FieldItems,
	"subtotal":      FieldSubtotal,
	"tax":           FieldTaxes,
	"taxes":         FieldTaxes,
	"tip":           FieldTips,
	"tips":          FieldTips,
	"submitted_by":  FieldSubmittedBy,
	"submitted by":  FieldSubmittedBy,
	"submitter":     FieldSubmittedBy,
}

// CanonicalField maps a field name or alias onto its canonical name.
// The second result is false for unknown names.
func CanonicalField(name string) (string, bool) {
	canonical, ok := fieldAliases[normalizeFieldName(name)]
	return canonical, ok
}

// FieldAliases returns every recognized alias, canonical names included
func FieldAliases() []string {
	aliases := make([]string, 0, len(fieldAliases))
	for alias := range fieldAliases {
		aliases = append(aliases, alias)
	}
	return aliases
}

// SortFields orders canonical field names by their canonical position and drops duplicates
func SortFields(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	sorted := make([]string, 0, len(seen))
	for _, f := range canonicalFields {
		if seen[f] {
			sorted = append(sorted, f)
		}
	}
	return sorted
}
