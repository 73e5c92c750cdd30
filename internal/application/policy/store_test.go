package policy

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// mockDocumentReader is a hand-rolled PolicyDocumentReader
type mockDocumentReader struct {
	paragraphsFunc func(ctx context.Context, path string) ([]string, error)
}

func (m *mockDocumentReader) Paragraphs(ctx context.Context, path string) ([]string, error) {
	if m.paragraphsFunc != nil {
		return m.paragraphsFunc(ctx, path)
	}
	return nil, errors.New("not configured")
}

func paragraphs(lines ...string) *mockDocumentReader {
	return &mockDocumentReader{
		paragraphsFunc: func(ctx context.Context, path string) ([]string, error) {
			return lines, nil
		},
	}
}

func TestStore_LoadParsedDocument(t *testing.T) {
	store := NewStore(paragraphs(
		"Company Expense Policy",
		"The maximum meal expense is $50.00 per person.",
		"All receipts must include the date, merchant name and total amount.",
		"Allowed expense categories: Meals, Travel Meals and Client Entertainment.",
		"The following items are not reimbursable: alcohol, tobacco, gift cards.",
	), zap.NewNop())

	result := store.Load(context.Background(), "policy.docx")

	assert.Equal(t, entity.PolicySourceParsed, result.Source)
	assert.Empty(t, result.Warning)
	assert.Equal(t, 50.0, result.Rules.MaxMealAmount)
	assert.Equal(t, []string{entity.FieldVendor, entity.FieldDate, entity.FieldAmount}, result.Rules.RequiredFields)
	assert.Equal(t, []string{"Meals", "Travel Meals", "Client Entertainment"}, result.Rules.AllowedCategories)
	assert.Equal(t, []string{"alcohol", "tobacco", "gift cards"}, result.Rules.DisallowedKeywords)
	assert.Equal(t, []string{"meal ceiling", "required fields", "allowed categories", "disallowed keywords"}, result.Matched)
}

func TestStore_PartialDocumentFillsDefaults(t *testing.T) {
	store := NewStore(paragraphs("Meals must not exceed 40 USD."), zap.NewNop())

	result := store.Load(context.Background(), "policy.txt")
	defaults := entity.DefaultPolicyRuleSet()

	assert.Equal(t, entity.PolicySourceParsed, result.Source)
	assert.Equal(t, 40.0, result.Rules.MaxMealAmount)
	assert.Equal(t, entity.SortFields(defaults.RequiredFields), result.Rules.RequiredFields)
	assert.Equal(t, defaults.AllowedCategories, result.Rules.AllowedCategories)
	assert.Equal(t, defaults.DisallowedKeywords, result.Rules.DisallowedKeywords)
}

func TestStore_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		reader *mockDocumentReader
		ref    string
	}{
		{
			name:   "no policy configured",
			reader: paragraphs("irrelevant"),
			ref:    "",
		},
		{
			name: "unreadable document",
			reader: &mockDocumentReader{paragraphsFunc: func(ctx context.Context, path string) ([]string, error) {
				return nil, os.ErrNotExist
			}},
			ref: "missing.docx",
		},
		{
			name:   "no recognizable statements",
			reader: paragraphs("Welcome to the team.", "Please be kind."),
			ref:    "policy.docx",
		},
		{
			name: "reader panics",
			reader: &mockDocumentReader{paragraphsFunc: func(ctx context.Context, path string) ([]string, error) {
				panic("corrupt document")
			}},
			ref: "policy.docx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewStore(tt.reader, zap.NewNop())

			result := store.Load(context.Background(), tt.ref)

			assert.Equal(t, entity.PolicySourceDefault, result.Source)
			assert.NotEmpty(t, result.Warning)
			assert.Equal(t, entity.DefaultPolicyRuleSet(), result.Rules)
		})
	}
}

func TestStore_NilReaderFallsBack(t *testing.T) {
	result := NewStore(nil, zap.NewNop()).Load(context.Background(), "policy.docx")
	assert.Equal(t, entity.PolicySourceDefault, result.Source)
}

func TestStore_StructuredFiles(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "policy.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"max_meal_amount": 60, "required_fields": ["Total", "merchant"]}`), 0644))

	yamlPath := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("allowed_categories:\n  - Meals\ndisallowed_keywords:\n  - Beer\n"), 0644))

	brokenPath := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(brokenPath, []byte(`{not json`), 0644))

	store := NewStore(nil, zap.NewNop())

	t.Run("json", func(t *testing.T) {
		result := store.Load(context.Background(), jsonPath)
		require.Equal(t, entity.PolicySourceParsed, result.Source)
		assert.Equal(t, 60.0, result.Rules.MaxMealAmount)
		assert.Equal(t, []string{entity.FieldVendor, entity.FieldAmount}, result.Rules.RequiredFields)
		assert.NotEmpty(t, result.Rules.AllowedCategories)
	})

	t.Run("yaml", func(t *testing.T) {
		result := store.Load(context.Background(), yamlPath)
		require.Equal(t, entity.PolicySourceParsed, result.Source)
		assert.Equal(t, entity.DefaultMaxMealAmount, result.Rules.MaxMealAmount)
		assert.Equal(t, []string{"Meals"}, result.Rules.AllowedCategories)
		assert.Equal(t, []string{"Beer"}, result.Rules.DisallowedKeywords)
	})

	t.Run("broken", func(t *testing.T) {
		result := store.Load(context.Background(), brokenPath)
		assert.Equal(t, entity.PolicySourceDefault, result.Source)
	})

	t.Run("missing", func(t *testing.T) {
		result := store.Load(context.Background(), filepath.Join(dir, "absent.yaml"))
		assert.Equal(t, entity.PolicySourceDefault, result.Source)
	})
}

func TestStore_ProseKeepsDefaultKeywords(t *testing.T) {
	store := NewStore(paragraphs(
		"Personal expenses are excluded from reimbursement.",
		"Meals must not exceed $60.",
	), zap.NewNop())

	result := store.Load(context.Background(), "policy.docx")

	defaults := entity.DefaultPolicyRuleSet()
	assert.Equal(t, entity.PolicySourceParsed, result.Source)
	assert.Equal(t, 60.0, result.Rules.MaxMealAmount)
	assert.Equal(t, defaults.DisallowedKeywords, result.Rules.DisallowedKeywords)
	assert.Equal(t, []string{"meal ceiling"}, result.Matched)
}

func TestHeuristics(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		check func(t *testing.T, e *extraction)
	}{
		{
			name: "meal limit with dollar sign",
			line: "Meals are limited to $1,250.50 for client events",
			check: func(t *testing.T, e *extraction) {
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 1250.50, *e.maxMealAmount)
			},
		},
		{
			name: "meal limit without currency",
			line: "Maximum meal allowance: 45",
			check: func(t *testing.T, e *extraction) {
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 45.0, *e.maxMealAmount)
			},
		},
		{
			name: "keywords before phrase",
			line: "Alcohol and tobacco are not reimbursable.",
			check: func(t *testing.T, e *extraction) {
				assert.Equal(t, []string{"alcohol", "tobacco"}, e.disallowedKeywords)
			},
		},
		{
			name: "sentences are not keywords",
			line: "Meals exceeding $50 are not reimbursable.",
			check: func(t *testing.T, e *extraction) {
				assert.Nil(t, e.disallowedKeywords)
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 50.0, *e.maxMealAmount)
			},
		},
		{
			name: "required fields need vocabulary",
			line: "A manager signature is required.",
			check: func(t *testing.T, e *extraction) {
				assert.Nil(t, e.requiredFields)
			},
		},
		{
			name: "meal amount follows its own statement",
			line: "Expenses above $100 need pre-approval; the maximum meal expense is $50 per person.",
			check: func(t *testing.T, e *extraction) {
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 50.0, *e.maxMealAmount)
			},
		},
		{
			name: "meal amount in a later sentence",
			line: "Hotel stays are capped at $200. Meals are limited to $35.",
			check: func(t *testing.T, e *extraction) {
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 35.0, *e.maxMealAmount)
			},
		},
		{
			name: "currency amount beats head count",
			line: "A $40 limit applies per meal for 2 people",
			check: func(t *testing.T, e *extraction) {
				require.NotNil(t, e.maxMealAmount)
				assert.Equal(t, 40.0, *e.maxMealAmount)
			},
		},
		{
			name: "prose after excluded",
			line: "Personal expenses are excluded from reimbursement.",
			check: func(t *testing.T, e *extraction) {
				assert.Nil(t, e.disallowedKeywords)
			},
		},
		{
			name: "reference after not allowed",
			line: "Items not listed are not allowed: see appendix.",
			check: func(t *testing.T, e *extraction) {
				assert.Nil(t, e.disallowedKeywords)
			},
		},
		{
			name: "keyword list after includes",
			line: "Prohibited purchases include liquor, lottery tickets.",
			check: func(t *testing.T, e *extraction) {
				assert.Equal(t, []string{"liquor", "lottery tickets"}, e.disallowedKeywords)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, extract([]string{tt.line}))
		})
	}
}
