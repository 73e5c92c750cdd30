package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

func record(vendor string, amount float64) *entity.ExpenseRecord {
	r := entity.NewPendingRecord("RCP001", "file:///r/a.jpg", "a.jpg", time.Now())
	if vendor != "" {
		r.Vendor = entity.StringPtr(vendor)
	}
	if amount > 0 {
		r.Amount = entity.FloatPtr(amount)
	}
	return r
}

func TestValidator_Scenarios(t *testing.T) {
	v := NewValidator(zap.NewNop())

	tests := []struct {
		name           string
		rules          entity.PolicyRuleSet
		record         func() *entity.ExpenseRecord
		expectedStatus entity.Status
		contains       []string
	}{
		{
			name:  "over the meal limit",
			rules: entity.PolicyRuleSet{MaxMealAmount: 50, RequiredFields: []string{"vendor", "amount"}},
			record: func() *entity.ExpenseRecord {
				return record("Cafe", 75)
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"exceeds policy limit"},
		},
		{
			name:  "missing amount",
			rules: entity.PolicyRuleSet{MaxMealAmount: 50, RequiredFields: []string{"vendor", "amount"}},
			record: func() *entity.ExpenseRecord {
				return record("Cafe", 0)
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"missing field: amount"},
		},
		{
			name: "compliant meal",
			rules: entity.PolicyRuleSet{
				MaxMealAmount:      50,
				RequiredFields:     []string{"vendor", "amount"},
				AllowedCategories:  []string{"Meals"},
				DisallowedKeywords: []string{"alcohol"},
			},
			record: func() *entity.ExpenseRecord {
				r := record("Cafe", 20)
				r.Category = entity.StringPtr("Meals")
				return r
			},
			expectedStatus: entity.StatusAccepted,
		},
		{
			name: "over limit and disallowed category",
			rules: entity.PolicyRuleSet{
				MaxMealAmount:     50,
				RequiredFields:    []string{"vendor", "amount"},
				AllowedCategories: []string{"Meals"},
			},
			record: func() *entity.ExpenseRecord {
				r := record("Cafe", 75)
				r.Category = entity.StringPtr("Alcohol")
				return r
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"exceeds policy limit", "disallowed category"},
		},
		{
			name:  "keyword in items",
			rules: entity.PolicyRuleSet{MaxMealAmount: 50, DisallowedKeywords: []string{"Wine"}},
			record: func() *entity.ExpenseRecord {
				r := record("Bistro", 30)
				r.Items = []string{"Pasta", "House red wine"}
				return r
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"disallowed keyword match: Wine"},
		},
		{
			name:  "keyword in vendor",
			rules: entity.PolicyRuleSet{DisallowedKeywords: []string{"liquor"}},
			record: func() *entity.ExpenseRecord {
				return record("Corner Liquor Store", 10)
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"disallowed keyword match: liquor"},
		},
		{
			name:  "no ceiling configured",
			rules: entity.PolicyRuleSet{},
			record: func() *entity.ExpenseRecord {
				return record("Cafe", 10000)
			},
			expectedStatus: entity.StatusAccepted,
		},
		{
			name:  "extraction failure",
			rules: entity.PolicyRuleSet{},
			record: func() *entity.ExpenseRecord {
				r := record("", 0)
				r.ExtractionFailed = true
				return r
			},
			expectedStatus: entity.StatusException,
			contains:       []string{"receipt extraction failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(tt.record(), tt.rules)

			assert.Equal(t, tt.expectedStatus, got.Status)
			for _, want := range tt.contains {
				assert.Contains(t, got.ExceptionReason, want)
			}
			if got.Status == entity.StatusException {
				assert.NotEmpty(t, got.ExceptionReason)
			} else {
				assert.Empty(t, got.ExceptionReason)
			}
			assert.Nil(t, got.ReviewDecision)
		})
	}
}

func TestValidator_ReportsAllMissingFieldsInOrder(t *testing.T) {
	rules := entity.PolicyRuleSet{RequiredFields: []string{"vendor", "date", "amount", "items"}}
	r := record("", 0)
	r.ExtractionFailed = true

	got := NewValidator(zap.NewNop()).Validate(r, rules)

	assert.Equal(t,
		"receipt extraction failed | missing field: vendor | missing field: date | missing field: amount | missing field: items",
		got.ExceptionReason)
}

func TestValidator_GatesAreNotShortCircuited(t *testing.T) {
	rules := entity.PolicyRuleSet{
		MaxMealAmount:      50,
		RequiredFields:     []string{"date"},
		AllowedCategories:  []string{"Meals"},
		DisallowedKeywords: []string{"tobacco"},
	}
	r := record("Tobacco Hut", 80)
	r.Category = entity.StringPtr("Retail")

	got := NewValidator(zap.NewNop()).Validate(r, rules)
	parts := strings.Split(got.ExceptionReason, ReasonSeparator)

	require.Len(t, parts, 4)
	assert.True(t, strings.HasPrefix(parts[0], ReasonMissingField))
	assert.True(t, strings.HasPrefix(parts[1], ReasonExceedsLimit))
	assert.True(t, strings.HasPrefix(parts[2], ReasonDisallowedCategory))
	assert.True(t, strings.HasPrefix(parts[3], ReasonDisallowedKeyword))
}

func TestValidator_IsPureAndIdempotent(t *testing.T) {
	v := NewValidator(zap.NewNop())
	rules := entity.PolicyRuleSet{MaxMealAmount: 50, RequiredFields: []string{"vendor", "amount"}}
	input := record("Cafe", 75)

	first := v.Validate(input, rules)
	second := v.Validate(first, rules)

	assert.Equal(t, entity.StatusPending, input.Status, "input must not be mutated")
	assert.Empty(t, input.ExceptionReason)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.ExceptionReason, second.ExceptionReason)
}

func TestValidator_RevalidationDropsReviewDecision(t *testing.T) {
	v := NewValidator(zap.NewNop())
	r := record("Cafe", 20)
	r.Status = entity.StatusException
	r.ExceptionReason = "stale"
	r.ReviewDecision = &entity.ReviewDecision{Decision: entity.DecisionApprove}

	got := v.Validate(r, entity.PolicyRuleSet{MaxMealAmount: 50})

	assert.Equal(t, entity.StatusAccepted, got.Status)
	assert.Nil(t, got.ReviewDecision)
	assert.Empty(t, got.ExceptionReason)
}
