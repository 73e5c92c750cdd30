package policy

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// extraction collects whatever the heuristics recognized in a document.
// Nil slices and a nil ceiling mean "not stated".
type extraction struct {
	maxMealAmount      *float64
	requiredFields     []string
	allowedCategories  []string
	disallowedKeywords []string
	matched            []string
}

func (e *extraction) empty() bool {
	return e.maxMealAmount == nil && e.requiredFields == nil &&
		e.allowedCategories == nil && e.disallowedKeywords == nil
}

// heuristic maps one kind of policy statement onto the extraction
type heuristic struct {
	name  string
	apply func(line string, e *extraction) bool
}

var (
	mealLimitPattern = regexp.MustCompile(`(?i)\bmeals?\b.*\b(maximum|max|limit\w*|exceed\w*|up to|cap|capped|ceiling)\b|\b(maximum|max|limit|up to|cap)\b.*\bmeals?\b`)
	amountPattern    = regexp.MustCompile(`(?i)(?:[$€£]\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?))|(?:(\d+(?:\.\d{1,2})?)\s*(?:usd|dollars|eur|gbp)\b)`)
	bareNumber       = regexp.MustCompile(`\b(\d+(?:\.\d{1,2})?)\b`)

	requiredPattern   = regexp.MustCompile(`(?i)(must include|must contain|must show|must list|required fields?|are required|is required|must have)`)
	categoriesPattern = regexp.MustCompile(`(?i)\b(allowed|permitted|eligible|approved|reimbursable)\b[^:]*\bcategor(y|ies)\b\s*(?::|are|include|includes)\s*(.+)$`)
	keywordsPattern   = regexp.MustCompile(`(?i)\b(not reimbursable|non-reimbursable|prohibited|disallowed|not allowed|not permitted|will not be reimbursed|excluded)\b\s*(:|\bincludes?\b|\bare\b)?\s*(.*)$`)
	listIntroPattern  = regexp.MustCompile(`(?i)^(?:[\w-]+\s*){0,2}?(?::|\bincludes?\b|\bare\b)\s*`)
	listSplitPattern  = regexp.MustCompile(`(?i)\s*(?:,|;|\band\b|\bor\b)\s*`)
	sentenceSplit     = regexp.MustCompile(`[!?]\s*|\.\s+`)
)

const maxKeywordWords = 3

// keyword fragments opening with these words are references or qualifiers
var fragmentStopWords = map[string]bool{
	"see": true, "refer": true, "from": true, "per": true, "in": true,
	"under": true, "unless": true, "except": true, "by": true, "for": true,
	"to": true, "as": true, "with": true, "without": true, "if": true,
	"when": true, "on": true, "at": true,
}

type fieldPattern struct {
	canonical string
	re        *regexp.Regexp
}

// fieldPatterns matches every field alias as a whole word
var fieldPatterns = compileFieldPatterns()

func compileFieldPatterns() []fieldPattern {
	aliases := entity.FieldAliases()
	patterns := make([]fieldPattern, 0, len(aliases))
	for _, alias := range aliases {
		canonical, _ := entity.CanonicalField(alias)
		patterns = append(patterns, fieldPattern{
			canonical: canonical,
			re:        regexp.MustCompile(`\b` + regexp.QuoteMeta(alias) + `\b`),
		})
	}
	return patterns
}

// heuristics run in this order against every paragraph
var heuristics = []heuristic{
	{name: "meal ceiling", apply: applyMealCeiling},
	{name: "required fields", apply: applyRequiredFields},
	{name: "allowed categories", apply: applyAllowedCategories},
	{name: "disallowed keywords", apply: applyDisallowedKeywords},
}

func extract(paragraphs []string) *extraction {
	e := &extraction{}
	seen := make(map[string]bool, len(heuristics))
	for _, p := range paragraphs {
		for _, line := range sentences(p) {
			for _, h := range heuristics {
				if h.apply(line, e) && !seen[h.name] {
					seen[h.name] = true
					e.matched = append(e.matched, h.name)
				}
			}
		}
	}
	return e
}

// sentences splits a paragraph so one statement cannot borrow another's amount or list
func sentences(paragraph string) []string {
	var out []string
	for _, s := range sentenceSplit.Split(paragraph, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func applyMealCeiling(line string, e *extraction) bool {
	if e.maxMealAmount != nil {
		return false
	}
	loc := mealLimitPattern.FindStringIndex(line)
	if loc == nil {
		return false
	}

	// currency amounts win over bare numbers, and the amount stated with the
	// meal limit wins over one elsewhere in the sentence
	stated := line[loc[0]:]
	raw := currencyAmount(stated)
	if raw == "" {
		raw = currencyAmount(line)
	}
	if raw == "" {
		raw = bareAmount(stated)
	}
	if raw == "" {
		raw = bareAmount(line)
	}
	if raw == "" {
		return false
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil || amount <= 0 {
		return false
	}
	e.maxMealAmount = &amount
	return true
}

func currencyAmount(s string) string {
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

func bareAmount(s string) string {
	if m := bareNumber.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func applyRequiredFields(line string, e *extraction) bool {
	loc := requiredPattern.FindStringIndex(line)
	if loc == nil {
		return false
	}

	lower := strings.ToLower(line)
	var fields []string
	for _, fp := range fieldPatterns {
		if fp.re.MatchString(lower) {
			fields = append(fields, fp.canonical)
		}
	}
	if len(fields) == 0 {
		return false
	}
	e.requiredFields = entity.SortFields(append(e.requiredFields, fields...))
	return true
}

func applyAllowedCategories(line string, e *extraction) bool {
	m := categoriesPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	list := splitList(m[3])
	if len(list) == 0 {
		return false
	}
	e.allowedCategories = append(e.allowedCategories, list...)
	return true
}

func applyDisallowedKeywords(line string, e *extraction) bool {
	m := keywordsPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}

	intro, tail := m[2], m[3]
	switch {
	case strings.Trim(strings.TrimSpace(tail), ".") == "":
		// "Alcohol and tobacco are not reimbursable" puts the list before the phrase
		idx := strings.Index(strings.ToLower(line), strings.ToLower(m[1]))
		tail = strings.TrimSuffix(strings.TrimSpace(line[:idx]), " are")
		tail = strings.TrimSuffix(tail, " is")
	case intro == "":
		// "Prohibited items: ..." names the list; "excluded from reimbursement" is prose
		loc := listIntroPattern.FindStringIndex(tail)
		if loc == nil {
			return false
		}
		tail = tail[loc[1]:]
	}

	var list []string
	for _, kw := range splitList(tail) {
		if !isKeyword(kw) {
			continue
		}
		list = append(list, strings.ToLower(kw))
	}
	if len(list) == 0 {
		return false
	}
	e.disallowedKeywords = append(e.disallowedKeywords, list...)
	return true
}

func splitList(s string) []string {
	s = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), "."))
	if s == "" {
		return nil
	}
	parts := listSplitPattern.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'()`)
		p = strings.TrimPrefix(p, "the ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// isKeyword rejects fragments that read as sentences, amounts or references
func isKeyword(kw string) bool {
	words := strings.Fields(kw)
	if len(words) == 0 || len(words) > maxKeywordWords {
		return false
	}
	if strings.ContainsAny(kw, "$0123456789") {
		return false
	}
	return !fragmentStopWords[strings.ToLower(words[0])]
}

// merge fills every field the document did not state from defaults
func (e *extraction) merge(defaults entity.PolicyRuleSet) entity.PolicyRuleSet {
	rules := defaults.Clone()
	if e.maxMealAmount != nil {
		rules.MaxMealAmount = *e.maxMealAmount
	}
	if e.requiredFields != nil {
		rules.RequiredFields = e.requiredFields
	}
	if e.allowedCategories != nil {
		rules.AllowedCategories = e.allowedCategories
	}
	if e.disallowedKeywords != nil {
		rules.DisallowedKeywords = e.disallowedKeywords
	}
	return rules.Normalize()
}
