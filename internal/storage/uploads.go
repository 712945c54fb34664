// Package storage persists uploaded files on local disk and hands back the
// public path they are served from.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// MaxFileSize is the per-file ceiling for uploads (matches the 10MB cap
	// the frontend advertises).
	MaxFileSize = 10 << 20
	// MaxAttachments caps the number of attachment files per request.
	MaxAttachments = 10
)

var (
	ErrFileTooLarge       = errors.New("file exceeds maximum size")
	ErrTooManyAttachments = errors.New("too many attachment files")
)

// UploadStore saves multipart files under a base directory.
type UploadStore struct {
	dir string
}

// NewUploadStore creates the upload directory if needed.
func NewUploadStore(dir string) (*UploadStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Validate checks every upload before anything is written, so an oversize
// file never leaves a partial set on disk.
func (s *UploadStore) Validate(image *multipart.FileHeader, files []*multipart.FileHeader) error {
	if len(files) > MaxAttachments {
		return ErrTooManyAttachments
	}
	if image != nil && image.Size > MaxFileSize {
		return ErrFileTooLarge
	}
	for _, fh := range files {
		if fh.Size > MaxFileSize {
			return ErrFileTooLarge
		}
	}
	return nil
}

// Save writes one upload to disk and returns its serving path. The stored
// name is prefixed with a fresh UUID so originals never collide.
func (s *UploadStore) Save(fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxFileSize {
		return "", ErrFileTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + "-" + filepath.Base(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}

	return filepath.ToSlash(filepath.Join("uploads", name)), nil
}

// SaveAll saves a batch of attachments, preserving the upload order. When a
// later save fails the earlier files are removed again, so a failed batch
// never leaves strays on disk.
func (s *UploadStore) SaveAll(files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := s.Save(fh)
		if err != nil {
			s.Remove(paths...)
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Remove deletes previously saved uploads by their serving paths. Best
// effort: a path that is already gone is not an error.
func (s *UploadStore) Remove(paths ...string) {
	for _, p := range paths {
		os.Remove(filepath.Join(s.dir, filepath.Base(p)))
	}
}

// Dir returns the base directory uploads are stored in.
func (s *UploadStore) Dir() string {
	return s.dir
}
