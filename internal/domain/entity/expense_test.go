package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseRecord_HasField(t *testing.T) {
	record := &ExpenseRecord{
		Vendor: StringPtr("Cafe"),
		Amount: FloatPtr(12.5),
		Date:   StringPtr("  "),
		Items:  []string{},
	}

	tests := []struct {
		field    string
		expected bool
	}{
		{"vendor", true},
		{"merchant", true},
		{"amount", true},
		{"Total", true},
		{"date", false},
		{"items", false},
		{"category", false},
		{"unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, record.HasField(tt.field))
		})
	}
}

func TestExpenseRecord_Clone(t *testing.T) {
	original := &ExpenseRecord{
		ExpenseID: "RCP001",
		Vendor:    StringPtr("Cafe"),
		Amount:    FloatPtr(20),
		Items:     []string{"coffee"},
		Status:    StatusException,
		ReviewDecision: &ReviewDecision{
			Decision:  DecisionApprove,
			Comment:   "ok",
			Timestamp: time.Now(),
		},
	}

	clone := original.Clone()
	require.NotNil(t, clone)

	*clone.Vendor = "Other"
	*clone.Amount = 99
	clone.Items[0] = "tea"
	clone.ReviewDecision.Comment = "changed"

	assert.Equal(t, "Cafe", *original.Vendor)
	assert.Equal(t, 20.0, *original.Amount)
	assert.Equal(t, "coffee", original.Items[0])
	assert.Equal(t, "ok", original.ReviewDecision.Comment)
}

func TestExpenseRecord_ApprovalStatus(t *testing.T) {
	tests := []struct {
		name     string
		record   *ExpenseRecord
		expected string
	}{
		{"accepted", &ExpenseRecord{Status: StatusAccepted}, "Approved"},
		{"pending review", &ExpenseRecord{Status: StatusException}, "Pending Review"},
		{"approved exception", &ExpenseRecord{Status: StatusException, ReviewDecision: &ReviewDecision{Decision: DecisionApprove}}, "Approved"},
		{"rejected exception", &ExpenseRecord{Status: StatusException, ReviewDecision: &ReviewDecision{Decision: DecisionReject}}, "Rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.record.ApprovalStatus())
		})
	}
}

func TestPolicyRuleSet_Normalize(t *testing.T) {
	rules := PolicyRuleSet{
		MaxMealAmount:      50,
		RequiredFields:     []string{"Total", "merchant", "vendor", "receipt number"},
		AllowedCategories:  []string{" Meals ", "meals", ""},
		DisallowedKeywords: []string{"Alcohol"},
	}

	normalized := rules.Normalize()

	assert.Equal(t, []string{FieldVendor, FieldAmount, "receipt number"}, normalized.RequiredFields)
	assert.Equal(t, []string{"Meals"}, normalized.AllowedCategories)
	assert.Equal(t, []string{"Total", "merchant", "vendor", "receipt number"}, rules.RequiredFields, "input must not be mutated")
}

func TestPolicyRuleSet_AllowsCategory(t *testing.T) {
	rules := PolicyRuleSet{AllowedCategories: []string{"Meals"}}
	assert.True(t, rules.AllowsCategory("meals"))
	assert.False(t, rules.AllowsCategory("Alcohol"))

	unrestricted := PolicyRuleSet{}
	assert.True(t, unrestricted.AllowsCategory("Anything"))
}

func TestDefaultPolicyRuleSet_FullyPopulated(t *testing.T) {
	rules := DefaultPolicyRuleSet()
	assert.Greater(t, rules.MaxMealAmount, 0.0)
	assert.NotEmpty(t, rules.RequiredFields)
	assert.NotEmpty(t, rules.AllowedCategories)
	assert.NotEmpty(t, rules.DisallowedKeywords)

	clone := rules.Clone()
	clone.RequiredFields[0] = "changed"
	assert.NotEqual(t, "changed", DefaultPolicyRuleSet().RequiredFields[0])
}

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input    string
		expected Decision
		ok       bool
	}{
		{"approve", DecisionApprove, true},
		{" Approved ", DecisionApprove, true},
		{"y", DecisionApprove, true},
		{"a", DecisionApprove, true},
		{"REJECT", DecisionReject, true},
		{"rejected", DecisionReject, true},
		{"n", DecisionReject, true},
		{"maybe", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDecision(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}
