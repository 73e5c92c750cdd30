package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/imaging"
)

// DefaultModel is used when no model is configured
const DefaultModel = openai.GPT4oMini

// chatCompleter is the slice of the OpenAI client the extractor needs
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ReceiptExtractor implements port.ReceiptExtractor with a vision chat completion
type ReceiptExtractor struct {
	client     chatCompleter
	source     port.ReceiptSource
	rasterizer port.PDFRasterizer
	prompts    *PromptConfig
	model      string
	maxPages   int
	logger     *zap.Logger
}

var _ port.ReceiptExtractor = (*ReceiptExtractor)(nil)

// ExtractorConfig configures the vision extractor
type ExtractorConfig struct {
	APIKey   string
	BaseURL  string
	Model    string
	MaxPages int
	Timeout  time.Duration
	Prompts  *PromptConfig
}

// NewReceiptExtractor creates an extractor backed by the OpenAI API
func NewReceiptExtractor(cfg ExtractorConfig, source port.ReceiptSource, rasterizer port.PDFRasterizer, logger *zap.Logger) *ReceiptExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return newReceiptExtractor(openai.NewClientWithConfig(clientCfg), cfg, source, rasterizer, logger)
}

func newReceiptExtractor(client chatCompleter, cfg ExtractorConfig, source port.ReceiptSource, rasterizer port.PDFRasterizer, logger *zap.Logger) *ReceiptExtractor {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	if cfg.Prompts == nil {
		cfg.Prompts = DefaultPrompts()
	}
	return &ReceiptExtractor{
		client:     client,
		source:     source,
		rasterizer: rasterizer,
		prompts:    cfg.Prompts,
		model:      cfg.Model,
		maxPages:   cfg.MaxPages,
		logger:     logger,
	}
}

// Extract reads the receipt, sends it to the vision model and decodes the fields.
// Every failure wraps port.ErrExtractionFailed.
func (e *ReceiptExtractor) Extract(ctx context.Context, ref port.ReceiptRef) (*port.RawFields, error) {
	images, mimeType, err := e.loadImages(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrExtractionFailed, err)
	}

	prompt, err := renderTemplate(e.prompts.ReceiptExtraction.UserTemplate, PromptData{
		FileName: ref.Name,
		Pages:    len(images),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", port.ErrExtractionFailed, err)
	}

	parts := []openai.ChatMessagePart{
		{
			Type: openai.ChatMessagePartTypeText,
			Text: prompt,
		},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(img)),
				Detail: openai.ImageURLDetailHigh,
			},
		})
	}

	e.logger.Debug("Extracting receipt with Vision API",
		zap.String("receipt", ref.URL),
		zap.String("model", e.model),
		zap.Int("images", len(images)))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		MaxTokens:   e.prompts.ReceiptExtraction.MaxTokens,
		Temperature: e.prompts.ReceiptExtraction.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: e.prompts.ReceiptExtraction.System,
			},
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		e.logger.Error("Vision API call failed", zap.String("receipt", ref.URL), zap.Error(err))
		return nil, fmt.Errorf("%w: vision API call failed: %w", port.ErrExtractionFailed, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no response from Vision API", port.ErrExtractionFailed)
	}

	content := resp.Choices[0].Message.Content
	fields, err := DecodeFields(content)
	if err != nil {
		e.logger.Error("Failed to parse Vision API response",
			zap.String("receipt", ref.URL),
			zap.String("content", content),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", port.ErrExtractionFailed, err)
	}

	e.logger.Info("Receipt extracted",
		zap.String("receipt", ref.URL),
		zap.Any("vendor", fields.Vendor),
		zap.Any("amount", fields.Amount))

	return fields, nil
}

func (e *ReceiptExtractor) loadImages(ctx context.Context, ref port.ReceiptRef) ([][]byte, string, error) {
	data, err := e.source.Read(ctx, ref)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("receipt file is empty")
	}

	if !imaging.IsPDF(ref.Name) {
		return [][]byte{data}, imaging.MimeType(ref.Name), nil
	}

	if e.rasterizer == nil {
		return nil, "", errors.New("PDF receipts need a rasterizer")
	}
	pages, err := e.rasterizer.Rasterize(ctx, data, e.maxPages)
	if err != nil {
		return nil, "", fmt.Errorf("failed to rasterize PDF: %w", err)
	}
	return pages, "image/jpeg", nil
}

// DecodeFields parses a model reply into raw fields. Replies wrapped in
// prose or markdown fences are accepted as long as they contain one JSON object.
func DecodeFields(content string) (*port.RawFields, error) {
	body := strings.TrimSpace(content)
	if !strings.HasPrefix(body, "{") {
		body = extractJSON(body)
		if body == "" {
			return nil, errors.New("response contains no JSON object")
		}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var fields port.RawFields
	if err := dec.Decode(&fields); err != nil {
		// a leading object followed by trailing text
		if inner := extractJSON(body); inner != "" && inner != body {
			return DecodeFields(inner)
		}
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &fields, nil
}

// extractJSON returns the first balanced JSON object in content
func extractJSON(content string) string {
	start := findJSONStart(content)
	if start < 0 {
		return ""
	}
	end := findJSONEnd(content, start)
	if end <= start {
		return ""
	}
	return content[start:end]
}

// findJSONStart finds the start of JSON content in a string
func findJSONStart(content string) int {
	return strings.IndexByte(content, '{')
}

// findJSONEnd finds the end of JSON content starting at a given position
func findJSONEnd(content string, start int) int {
	if start < 0 || start >= len(content) || content[start] != '{' {
		return -1
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(content); i++ {
		c := content[i]

		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
