package documents

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	t.Helper()

	storage, err := NewLocalStorage(&LocalStorageConfig{
		BaseDir: t.TempDir(),
		BaseURL: "https://shadeworks.example.com/api/v1/documents",
	})
	require.NoError(t, err)

	return storage
}

func TestLocalStorage_Store(t *testing.T) {
	t.Run("writes the document and returns its URL", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		url, err := storage.Store(context.Background(), "invoices/2026/08/INV-2026-00007.pdf", []byte("%PDF-1.7 test"))

		require.NoError(t, err)
		assert.Equal(t, "https://shadeworks.example.com/api/v1/documents/invoices/2026/08/INV-2026-00007.pdf", url)

		onDisk := filepath.Join(storage.config.BaseDir, "invoices", "2026", "08", "INV-2026-00007.pdf")
		data, err := os.ReadFile(onDisk)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7 test"), data)
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Store(context.Background(), "invoices/empty.pdf", nil)

		require.Error(t, err)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
	})

	t.Run("blocks path traversal keys", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Store(context.Background(), "../escape.pdf", []byte("%PDF"))
		assert.Error(t, err)

		_, err = storage.Store(context.Background(), "invoices/../../escape.pdf", []byte("%PDF"))
		assert.Error(t, err)

		_, err = storage.Store(context.Background(), "/etc/passwd", []byte("%PDF"))
		assert.Error(t, err)
	})
}

func TestLocalStorage_Get(t *testing.T) {
	t.Run("round trips a stored document", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Store(context.Background(), "invoices/2026/08/INV-1.pdf", []byte("%PDF-data"))
		require.NoError(t, err)

		reader, err := storage.Get(context.Background(), "invoices/2026/08/INV-1.pdf")
		require.NoError(t, err)
		defer reader.Close()

		data, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-data"), data)
	})

	t.Run("returns an error for a missing document", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Get(context.Background(), "invoices/missing.pdf")

		require.Error(t, err)
		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeStorageFailed, renderErr.Code)
	})

	t.Run("blocks path traversal keys", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Get(context.Background(), "../../etc/passwd")

		assert.Error(t, err)
	})
}

func TestLocalStorage_Delete(t *testing.T) {
	t.Run("removes a stored document", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		_, err := storage.Store(context.Background(), "invoices/INV-1.pdf", []byte("%PDF"))
		require.NoError(t, err)

		err = storage.Delete(context.Background(), "invoices/INV-1.pdf")
		assert.NoError(t, err)

		_, err = storage.Get(context.Background(), "invoices/INV-1.pdf")
		assert.Error(t, err)
	})

	t.Run("deleting a missing document is not an error", func(t *testing.T) {
		storage := newTestLocalStorage(t)

		err := storage.Delete(context.Background(), "invoices/never-existed.pdf")

		assert.NoError(t, err)
	})
}

func TestNewLocalStorage_Defaults(t *testing.T) {
	dir := t.TempDir()

	storage, err := NewLocalStorage(&LocalStorageConfig{BaseDir: dir})
	require.NoError(t, err)

	url, err := storage.Store(context.Background(), "invoices/INV-1.pdf", []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/documents/invoices/INV-1.pdf", url)
}
