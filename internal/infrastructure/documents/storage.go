package documents

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// DocumentStorage defines the interface for archiving rendered documents
type DocumentStorage interface {
	// Store saves a document under the given key and returns its URL
	Store(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves a stored document by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes a stored document
	Delete(ctx context.Context, key string) error
}

// LocalStorageConfig contains configuration for local document storage
type LocalStorageConfig struct {
	// BaseDir is the root directory for document storage
	// Default: ./data/documents
	BaseDir string
	// BaseURL is the URL prefix for accessing documents
	// Example: https://shadeworks.example.com/api/v1/documents
	BaseURL string
	// Logger for operations
	Logger *zap.Logger
}

// LocalStorage stores documents on the local file system
type LocalStorage struct {
	config *LocalStorageConfig
	logger *zap.Logger
}

// NewLocalStorage creates a file system based document storage
func NewLocalStorage(config *LocalStorageConfig) (*LocalStorage, error) {
	if config == nil {
		config = &LocalStorageConfig{}
	}

	if config.BaseDir == "" {
		config.BaseDir = "./data/documents"
	}
	if config.BaseURL == "" {
		config.BaseURL = "/api/v1/documents"
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", config.BaseDir), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &LocalStorage{
		config: config,
		logger: logger,
	}, nil
}

// Store writes a document under {base}/{key} and returns its URL
func (s *LocalStorage) Store(ctx context.Context, key string, data []byte) (string, error) {
	select {
	case <-ctx.Done():
		return "", NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if len(data) == 0 {
		return "", NewRenderError(ErrCodeStorageFailed, "document data is empty", nil)
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to write document", err)
	}

	url := s.url(key)

	s.logger.Info("document stored",
		zap.String("path", fullPath),
		zap.Int("size", len(data)),
		zap.String("url", url))

	return url, nil
}

// Get retrieves a document by its key
func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "document not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open document", err)
	}

	return file, nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	select {
	case <-ctx.Done():
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return NewRenderError(ErrCodeStorageFailed, "failed to delete document", err)
	}

	s.logger.Info("document deleted", zap.String("key", key))
	return nil
}

// resolve sanitizes a key and maps it to an absolute path under BaseDir
func (s *LocalStorage) resolve(key string) (string, error) {
	cleanKey := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(cleanKey) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious document key",
			zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid document key", nil)
	}

	fullPath := filepath.Join(s.config.BaseDir, cleanKey)

	// Verify the resolved path is still under BaseDir
	absBase, err := filepath.Abs(s.config.BaseDir)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve document path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		s.logger.Warn("document path escape attempt blocked",
			zap.String("key", key),
			zap.String("absPath", absPath))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid document key", nil)
	}

	return fullPath, nil
}

// url maps a key to its accessible URL
func (s *LocalStorage) url(key string) string {
	cleanKey := filepath.ToSlash(filepath.Clean(filepath.FromSlash(key)))
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(s.config.BaseURL, "/"), cleanKey)
}

// containsDotDot checks if a key contains ".." components
func containsDotDot(key string) bool {
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

// Ensure LocalStorage implements DocumentStorage
var _ DocumentStorage = (*LocalStorage)(nil)
