// Package blobstore provides filesystem-backed storage for uploaded
// datasets, result artifacts and serialized model pipelines.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"churnscope/domain/core"
	"churnscope/ports"
)

// LocalFileStore implements ports.FileStore on a local directory.
type LocalFileStore struct {
	baseDir   string
	chunkSize int
}

// NewLocalFileStore creates the base directory if needed.
func NewLocalFileStore(baseDir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &LocalFileStore{baseDir: baseDir, chunkSize: 1 << 20}, nil
}

// Store writes r under a collision-free name and returns the stored name.
func (s *LocalFileStore) Store(ctx context.Context, r io.Reader, filename string) (core.FileRef, error) {
	filename = filepath.Base(filename)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	timestamp := time.Now().Format("20060102_150405")
	unique := fmt.Sprintf("%s_%s_%s%s", base, timestamp, uuid.New().String()[:8], ext)

	path := filepath.Join(s.baseDir, unique)
	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating destination file: %w", err)
	}
	defer dest.Close()

	buf := make([]byte, s.chunkSize)
	if _, err := io.CopyBuffer(dest, r, buf); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("copying file contents: %w", err)
	}
	return core.FileRef(unique), nil
}

// StoreNamed writes r under exactly the given name, overwriting any previous
// artifact with that name. Used for generated results whose names already
// embed a UUID.
func (s *LocalFileStore) StoreNamed(ctx context.Context, r io.Reader, name string) (core.FileRef, error) {
	name = filepath.Base(name)
	path := filepath.Join(s.baseDir, name)
	dest, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating destination file: %w", err)
	}
	defer dest.Close()

	buf := make([]byte, s.chunkSize)
	if _, err := io.CopyBuffer(dest, r, buf); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("copying file contents: %w", err)
	}
	return core.FileRef(name), nil
}

// Open returns a reader for the stored file.
func (s *LocalFileStore) Open(ctx context.Context, ref core.FileRef) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file %s: %w", ref, os.ErrNotExist)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	return f, nil
}

// Path resolves a stored name to its filesystem path.
func (s *LocalFileStore) Path(ref core.FileRef) string {
	return filepath.Join(s.baseDir, filepath.Base(string(ref)))
}

// Exists reports whether the stored file is present.
func (s *LocalFileStore) Exists(ctx context.Context, ref core.FileRef) (bool, error) {
	_, err := os.Stat(s.Path(ref))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking file: %w", err)
	}
	return true, nil
}

// ArtifactName builds a "prefix_uuid.ext" result name.
func ArtifactName(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, uuid.New().String(), ext)
}

var _ ports.FileStore = (*LocalFileStore)(nil)
