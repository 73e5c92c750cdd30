// Package imaging turns receipt files into images a vision model accepts
package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
)

const jpegQuality = 85

// ErrNoPages is returned when no page of a PDF could be rendered
var ErrNoPages = errors.New("no pages rendered from PDF")

// PDFRasterizer renders PDF pages to JPEG using MuPDF
type PDFRasterizer struct {
	logger *zap.Logger
}

var _ port.PDFRasterizer = (*PDFRasterizer)(nil)

// NewPDFRasterizer creates a new rasterizer
func NewPDFRasterizer(logger *zap.Logger) *PDFRasterizer {
	return &PDFRasterizer{logger: logger}
}

// Rasterize renders at most maxPages pages; maxPages <= 0 renders all of them.
// Pages that fail to render are skipped.
func (r *PDFRasterizer) Rasterize(ctx context.Context, pdf []byte, maxPages int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	pageCount := doc.NumPage()
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	r.logger.Debug("Rasterizing PDF",
		zap.Int("total_pages", doc.NumPage()),
		zap.Int("rendered_pages", pageCount))

	var pages [][]byte
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		img, err := doc.Image(pageNum)
		if err != nil {
			r.logger.Warn("Failed to render page",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}

		data, err := EncodeJPEG(img)
		if err != nil {
			r.logger.Warn("Failed to encode page to JPEG",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		pages = append(pages, data)
	}

	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	return pages, nil
}

// EncodeJPEG encodes img at the quality used for vision requests
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// IsPDF reports whether name looks like a PDF file
func IsPDF(name string) bool {
	return strings.EqualFold(path.Ext(name), ".pdf")
}

// MimeType maps a receipt file name to the media type of its content
func MimeType(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".bmp":
		return "image/bmp"
	case ".tif", ".tiff":
		return "image/tiff"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
