package openai

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// PromptConfig holds the prompts and model parameters used for receipt extraction
type PromptConfig struct {
	ReceiptExtraction struct {
		Temperature  float32 `yaml:"temperature"`
		MaxTokens    int     `yaml:"max_tokens"`
		System       string  `yaml:"system"`
		UserTemplate string  `yaml:"user_template"`
	} `yaml:"receipt_extraction"`
}

// PromptData is passed to the user template
type PromptData struct {
	FileName string
	Pages    int
}

const defaultSystemPrompt = "You read retail and restaurant receipts and return their contents as JSON. Never guess values you cannot see."

const defaultUserTemplate = `Extract the receipt shown in {{if gt .Pages 1}}these {{.Pages}} page images{{else}}this image{{end}} (file {{.FileName}}).

Return ONLY a JSON object with these keys:
{
  "expense_id": "string or null",
  "vendor": "merchant name",
  "merchant_address": "string or null",
  "merchant_phone": "string or null",
  "date": "YYYY-MM-DD",
  "category": "expense category such as Meals, Travel, Lodging",
  "items": ["line item descriptions"],
  "subtotal": number or null,
  "taxes": number or null,
  "tips": number or null,
  "amount": total amount paid as a number,
  "submitted_by": "string or null"
}

Use null for anything not visible. Amounts are plain numbers without currency symbols.`

// DefaultPrompts returns the built-in prompt configuration
func DefaultPrompts() *PromptConfig {
	p := &PromptConfig{}
	p.ReceiptExtraction.Temperature = 0.1
	p.ReceiptExtraction.MaxTokens = 1024
	p.ReceiptExtraction.System = defaultSystemPrompt
	p.ReceiptExtraction.UserTemplate = defaultUserTemplate
	return p
}

// LoadPrompts loads prompt configuration from a YAML file. Keys missing
// from the file keep their built-in values.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	data, err := os.ReadFile(promptsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompts file: %w", err)
	}

	prompts := DefaultPrompts()
	if err := yaml.Unmarshal(data, prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}

	if _, err := template.New("prompt").Parse(prompts.ReceiptExtraction.UserTemplate); err != nil {
		return nil, fmt.Errorf("invalid user_template: %w", err)
	}

	return prompts, nil
}

// renderTemplate renders a template with provided data
func renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
