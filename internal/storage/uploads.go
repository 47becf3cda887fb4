// Package storage persists complaint images under a configured directory.
// Names are timestamp-prefixed to avoid collisions; extensions are
// allow-listed and a size cap is enforced on write.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/civicdesk/complaint-service/internal/config"
)

// UploadStore writes and removes complaint images.
type UploadStore struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
	now      func() time.Time
}

// NewUploadStore prepares the upload directory.
func NewUploadStore(cfg config.UploadConfig) (*UploadStore, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &UploadStore{
		dir:      cfg.Dir,
		maxBytes: cfg.MaxBytes,
		allowed:  allowed,
		now:      time.Now,
	}, nil
}

// Allowed reports whether the filename carries a permitted extension.
func (s *UploadStore) Allowed(filename string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

// MaxBytes returns the configured size cap.
func (s *UploadStore) MaxBytes() int64 {
	return s.maxBytes
}

// Save stages the upload under a timestamp-prefixed name and returns the
// stored filename. The caller removes it if the surrounding transaction
// fails.
func (s *UploadStore) Save(originalName string, r io.Reader) (string, error) {
	if !s.Allowed(originalName) {
		return "", fmt.Errorf("file extension not allowed: %s", filepath.Ext(originalName))
	}

	filename := s.now().Format("20060102_150405") + "_" + sanitizeName(originalName)
	path := filepath.Join(s.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxBytes)
	}
	return filename, nil
}

// Remove deletes a staged upload; a missing file is not an error.
func (s *UploadStore) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the on-disk location of a stored file.
func (s *UploadStore) Path(filename string) string {
	return filepath.Join(s.dir, filename)
}

func sanitizeName(name string) string {
	base := filepath.Base(name)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
