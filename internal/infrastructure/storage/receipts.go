// Package storage lists and reads receipt images through afs, so the
// image directory may be a local path or any URL afs understands.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
)

var (
	// ErrImageDirNotFound is returned when the receipt directory does not exist
	ErrImageDirNotFound = errors.New("image directory not found")
	// ErrNoReceipts is returned when the directory holds no supported receipt files
	ErrNoReceipts = errors.New("no receipt files found")
)

// DefaultExtensions are the receipt file types picked up by List
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".pdf"}

// ReceiptStore implements port.ReceiptSource on top of an afs service
type ReceiptStore struct {
	fs         afs.Service
	extensions map[string]bool
	logger     *zap.Logger
}

var _ port.ReceiptSource = (*ReceiptStore)(nil)

// NewReceiptStore creates a receipt store. No extensions means DefaultExtensions.
func NewReceiptStore(fs afs.Service, logger *zap.Logger, extensions ...string) *ReceiptStore {
	if fs == nil {
		fs = afs.New()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	return &ReceiptStore{fs: fs, extensions: allowed, logger: logger}
}

// List returns the supported receipt files directly under dir, sorted by name
func (s *ReceiptStore) List(ctx context.Context, dir string) ([]port.ReceiptRef, error) {
	dirURL, err := toURL(dir)
	if err != nil {
		return nil, err
	}

	exists, err := s.fs.Exists(ctx, dirURL)
	if err != nil {
		return nil, fmt.Errorf("failed to check image directory: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrImageDirNotFound, dir)
	}

	objects, err := s.fs.List(ctx, dirURL, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list image directory: %w", err)
	}

	var refs []port.ReceiptRef
	skipped := 0
	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		if !s.extensions[strings.ToLower(path.Ext(obj.Name()))] {
			skipped++
			continue
		}
		refs = append(refs, port.ReceiptRef{URL: obj.URL(), Name: obj.Name()})
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReceipts, dir)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })

	s.logger.Info("Receipts discovered",
		zap.String("dir", dirURL),
		zap.Int("receipts", len(refs)),
		zap.Int("skipped", skipped))

	return refs, nil
}

// Read downloads the receipt content
func (s *ReceiptStore) Read(ctx context.Context, ref port.ReceiptRef) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, ref.URL)
	if err != nil {
		s.logger.Error("Failed to read receipt",
			zap.String("receipt", ref.URL),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read receipt %s: %w", ref.Name, err)
	}

	s.logger.Debug("Receipt read",
		zap.String("receipt", ref.URL),
		zap.Int("size", len(data)))

	return data, nil
}

// Sibling returns a reference to name in the same directory as ref
func Sibling(ref port.ReceiptRef, name string) port.ReceiptRef {
	dir := ref.URL[:strings.LastIndex(ref.URL, "/")+1]
	return port.ReceiptRef{URL: dir + name, Name: name}
}

// toURL resolves bare local paths to absolute ones; URLs pass through
func toURL(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("%w: empty path", ErrImageDirNotFound)
	}
	if strings.Contains(location, "://") {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	return abs, nil
}
