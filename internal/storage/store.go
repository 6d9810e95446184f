package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalStore keeps uploaded attachments on the local filesystem under a
// single base directory. The stored locator is the path relative to the
// base directory, so the base can be moved without rewriting rows.
type LocalStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalStore creates a store rooted at baseDir, creating it if needed.
func NewLocalStore(baseDir string, logger *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, logger: logger}, nil
}

// Save writes content under a unique name derived from the original file
// name and returns the locator for later retrieval.
func (s *LocalStore) Save(name string, content []byte) (string, error) {
	locator := uuid.NewString() + "_" + sanitizeName(name)
	fullPath := filepath.Join(s.baseDir, locator)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved",
		zap.String("locator", locator),
		zap.Int("size", len(content)))

	return locator, nil
}

// Open returns the content stored under locator.
func (s *LocalStore) Open(locator string) ([]byte, error) {
	fullPath := filepath.Join(s.baseDir, locator)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Remove deletes the content stored under locator. A missing file is not
// an error so deletions stay idempotent.
func (s *LocalStore) Remove(locator string) error {
	fullPath := filepath.Join(s.baseDir, locator)
	if err := s.validatePath(fullPath); err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		s.logger.Error("Failed to remove file",
			zap.String("locator", locator),
			zap.Error(err))
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// validatePath checks that the path resolves inside baseDir.
func (s *LocalStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

// sanitizeName strips path separators and control characters from a
// client-supplied file name.
func sanitizeName(name string) string {
	name = filepath.Base(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
