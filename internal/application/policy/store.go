package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/domain/entity"
)

// LoadResult is the outcome of Store.Load. Rules is always fully populated.
type LoadResult struct {
	Rules   entity.PolicyRuleSet
	Source  entity.PolicySource
	Warning string
	// Matched lists the heuristics that recognized a statement, in document order
	Matched []string
}

// ruleFile is the on-disk shape of a structured policy; absent keys take defaults
type ruleFile struct {
	MaxMealAmount      *float64 `json:"max_meal_amount" yaml:"max_meal_amount"`
	RequiredFields     []string `json:"required_fields" yaml:"required_fields"`
	AllowedCategories  []string `json:"allowed_categories" yaml:"allowed_categories"`
	DisallowedKeywords []string `json:"disallowed_keywords" yaml:"disallowed_keywords"`
}

// Store loads a policy document into a rule set, falling back to defaults
type Store struct {
	reader   port.PolicyDocumentReader
	defaults entity.PolicyRuleSet
	readFile func(string) ([]byte, error)
	logger   *zap.Logger
}

// NewStore creates a new policy store
func NewStore(reader port.PolicyDocumentReader, logger *zap.Logger) *Store {
	return &Store{
		reader:   reader,
		defaults: entity.DefaultPolicyRuleSet(),
		readFile: os.ReadFile,
		logger:   logger,
	}
}

// WithDefaults replaces the fallback rule set
func (s *Store) WithDefaults(defaults entity.PolicyRuleSet) *Store {
	s.defaults = defaults.Normalize()
	return s
}

// Load never fails: an absent, unreadable or unrecognizable document
// yields the default rule set together with a warning.
func (s *Store) Load(ctx context.Context, sourceRef string) LoadResult {
	rules, matched, err := s.parse(ctx, sourceRef)
	if err != nil {
		s.logger.Warn("Policy document unusable, using default rules",
			zap.String("policy", sourceRef),
			zap.Error(err))
		return LoadResult{
			Rules:   s.defaults.Clone(),
			Source:  entity.PolicySourceDefault,
			Warning: err.Error(),
		}
	}

	s.logger.Info("Policy loaded",
		zap.String("policy", sourceRef),
		zap.Float64("max_meal_amount", rules.MaxMealAmount),
		zap.Strings("required_fields", rules.RequiredFields),
		zap.Int("allowed_categories", len(rules.AllowedCategories)),
		zap.Int("disallowed_keywords", len(rules.DisallowedKeywords)))

	return LoadResult{
		Rules:   rules,
		Source:  entity.PolicySourceParsed,
		Matched: matched,
	}
}

func (s *Store) parse(ctx context.Context, sourceRef string) (rules entity.PolicyRuleSet, matched []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("policy parser panicked: %v", r)
		}
	}()

	if strings.TrimSpace(sourceRef) == "" {
		return rules, nil, ErrNoPolicySource
	}

	switch strings.ToLower(filepath.Ext(sourceRef)) {
	case ".json", ".yaml", ".yml":
		rules, err = s.parseStructured(sourceRef)
		return rules, []string{"structured"}, err
	}

	if s.reader == nil {
		return rules, nil, fmt.Errorf("no document reader for %s", sourceRef)
	}

	paragraphs, err := s.reader.Paragraphs(ctx, sourceRef)
	if err != nil {
		return rules, nil, fmt.Errorf("failed to read policy document: %w", err)
	}

	e := extract(paragraphs)
	if e.empty() {
		return rules, nil, fmt.Errorf("%w in %d paragraphs", ErrNoRecognizedStatements, len(paragraphs))
	}

	return e.merge(s.defaults), e.matched, nil
}

func (s *Store) parseStructured(path string) (entity.PolicyRuleSet, error) {
	data, err := s.readFile(path)
	if err != nil {
		return entity.PolicyRuleSet{}, fmt.Errorf("failed to read policy file: %w", err)
	}

	var file ruleFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return entity.PolicyRuleSet{}, fmt.Errorf("failed to decode policy file: %w", err)
	}

	e := &extraction{
		maxMealAmount:      file.MaxMealAmount,
		requiredFields:     file.RequiredFields,
		allowedCategories:  file.AllowedCategories,
		disallowedKeywords: file.DisallowedKeywords,
	}
	if e.empty() {
		return entity.PolicyRuleSet{}, ErrNoRecognizedStatements
	}
	return e.merge(s.defaults), nil
}
