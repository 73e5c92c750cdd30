// Package sidecar reads receipt fields from a JSON file stored next to
// each receipt image. It lets the pipeline run without an OCR service.
package sidecar

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/storage"
)

// Extractor implements port.ReceiptExtractor from <basename>.json files
type Extractor struct {
	source port.ReceiptSource
	logger *zap.Logger
}

var _ port.ReceiptExtractor = (*Extractor)(nil)

// NewExtractor creates a sidecar extractor reading through source
func NewExtractor(source port.ReceiptSource, logger *zap.Logger) *Extractor {
	return &Extractor{source: source, logger: logger}
}

// Extract loads and decodes the sidecar of ref
func (e *Extractor) Extract(ctx context.Context, ref port.ReceiptRef) (*port.RawFields, error) {
	sidecar := storage.Sibling(ref, SidecarName(ref.Name))

	data, err := e.source.Read(ctx, sidecar)
	if err != nil {
		return nil, fmt.Errorf("%w: no sidecar for %s: %w", port.ErrExtractionFailed, ref.Name, err)
	}

	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()

	var fields port.RawFields
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: invalid sidecar %s: %w", port.ErrExtractionFailed, sidecar.Name, err)
	}

	e.logger.Debug("Sidecar loaded",
		zap.String("receipt", ref.URL),
		zap.String("sidecar", sidecar.URL))

	return &fields, nil
}

// SidecarName maps lunch.jpg to lunch.json
func SidecarName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".json"
}
