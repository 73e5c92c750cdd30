package entity

import "strings"

// PolicyRuleSet is the structured form of an expense policy
type PolicyRuleSet struct {
	// MaxMealAmount is the per-meal ceiling; zero or less disables the amount gate
	MaxMealAmount      float64  `json:"max_meal_amount" yaml:"max_meal_amount"`
	RequiredFields     []string `json:"required_fields" yaml:"required_fields"`
	AllowedCategories  []string `json:"allowed_categories" yaml:"allowed_categories"`
	DisallowedKeywords []string `json:"disallowed_keywords" yaml:"disallowed_keywords"`
}

// Default policy values applied when no document is available
const DefaultMaxMealAmount = 35.00

// DefaultPolicyRuleSet returns the hard-coded rule set used when a policy cannot be parsed
func DefaultPolicyRuleSet() PolicyRuleSet {
	return PolicyRuleSet{
		MaxMealAmount:  DefaultMaxMealAmount,
		RequiredFields: []string{FieldVendor, FieldDate, FieldAmount, FieldItems},
		AllowedCategories: []string{
			"Meals",
			"Dining",
			"Food & Beverage",
			"Travel Meals",
			"Client Entertainment",
		},
		DisallowedKeywords: []string{"alcohol", "liquor", "tobacco", "gift card"},
	}
}

// Clone returns a deep copy of the rule set
func (p PolicyRuleSet) Clone() PolicyRuleSet {
	return PolicyRuleSet{
		MaxMealAmount:      p.MaxMealAmount,
		RequiredFields:     append([]string{}, p.RequiredFields...),
		AllowedCategories:  append([]string{}, p.AllowedCategories...),
		DisallowedKeywords: append([]string{}, p.DisallowedKeywords...),
	}
}

// Normalize canonicalizes field names and trims list entries. Unknown
// required field names are kept lowercased so they still fail the
// data-quality gate.
func (p PolicyRuleSet) Normalize() PolicyRuleSet {
	out := p.Clone()

	var known, unknown []string
	for _, f := range out.RequiredFields {
		if canonical, ok := CanonicalField(f); ok {
			known = append(known, canonical)
		} else if n := normalizeFieldName(f); n != "" {
			unknown = append(unknown, n)
		}
	}
	out.RequiredFields = append(SortFields(known), unknown...)
	out.AllowedCategories = trimList(out.AllowedCategories)
	out.DisallowedKeywords = trimList(out.DisallowedKeywords)
	return out
}

// AllowsCategory reports whether category is permitted. An empty allow list permits everything.
func (p PolicyRuleSet) AllowsCategory(category string) bool {
	if len(p.AllowedCategories) == 0 {
		return true
	}
	for _, allowed := range p.AllowedCategories {
		if strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(category)) {
			return true
		}
	}
	return false
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func normalizeFieldName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), " ")
}
