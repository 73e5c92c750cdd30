package sidecar

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"go.uber.org/zap"

	"github.com/sriram-gona-01/expense-project-finalcode/internal/application/port"
	"github.com/sriram-gona-01/expense-project-finalcode/internal/infrastructure/storage"
)

func TestSidecarName(t *testing.T) {
	assert.Equal(t, "lunch.json", SidecarName("lunch.jpg"))
	assert.Equal(t, "scan.v2.json", SidecarName("scan.v2.pdf"))
	assert.Equal(t, "noext.json", SidecarName("noext"))
}

func TestExtractor_Extract(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.jpg":  "img",
		"a.json": `{"vendor":"Cafe","amount":18.75,"items":["Soup"]}`,
		"b.jpg":  "img",
		"b.json": `{"vendor":`,
		"c.jpg":  "img",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	store := storage.NewReceiptStore(afs.New(), zap.NewNop())
	refs, err := store.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	extractor := NewExtractor(store, zap.NewNop())

	fields, err := extractor.Extract(context.Background(), refs[0])
	require.NoError(t, err)
	assert.Equal(t, "Cafe", fields.Vendor)
	assert.Equal(t, json.Number("18.75"), fields.Amount)

	_, err = extractor.Extract(context.Background(), refs[1])
	assert.ErrorIs(t, err, port.ErrExtractionFailed, "invalid json")

	_, err = extractor.Extract(context.Background(), refs[2])
	assert.ErrorIs(t, err, port.ErrExtractionFailed, "missing sidecar")
}
