package document

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
)

// ErrUnsupportedFormat is returned for document types the reader cannot parse
var ErrUnsupportedFormat = errors.New("unsupported policy document format")

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Reader extracts paragraphs from .docx, .txt and .md policy documents
type Reader struct {
	logger *zap.Logger
}

var _ port.PolicyDocumentReader = (*Reader)(nil)

// NewReader creates a new policy document reader
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Paragraphs returns the non-empty paragraphs of the document in order.
// Table cells are returned as paragraphs of their own.
func (r *Reader) Paragraphs(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		paragraphs []string
		err        error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".docx":
		paragraphs, err = readDocx(path)
	case ".txt", ".md", ".text":
		paragraphs, err = readText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Policy document read",
		zap.String("path", path),
		zap.Int("paragraphs", len(paragraphs)))

	return paragraphs, nil
}

func readText(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy document: %w", err)
	}
	defer f.Close()

	var paragraphs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimLeft(scanner.Text(), "#*->• \t"))
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read policy document: %w", err)
	}
	return paragraphs, nil
}

func readDocx(path string) ([]string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open docx: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open document part: %w", err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return nil, fmt.Errorf("docx has no word/document.xml")
}

// parseDocumentXML collects w:t runs per w:p element
func parseDocumentXML(rd io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(rd)

	var (
		paragraphs []string
		current    bytes.Buffer
		inText     bool
		depth      int
	)

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				depth++
			case "t":
				inText = true
			case "tab":
				current.WriteByte(' ')
			case "br":
				current.WriteByte(' ')
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				depth--
				if depth == 0 {
					if text := strings.Join(strings.Fields(current.String()), " "); text != "" {
						paragraphs = append(paragraphs, text)
					}
					current.Reset()
				}
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
