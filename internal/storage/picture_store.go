// Package storage persists uploaded profile pictures on the local
// filesystem and hands back the reference kept on the profile row.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for uploads that are not images.
var ErrUnsupportedType = errors.New("unsupported picture type")

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// PictureStore writes picture files under a base directory.
type PictureStore struct {
	baseDir string
}

// NewPictureStore creates the base directory if needed.
func NewPictureStore(baseDir string) (*PictureStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &PictureStore{baseDir: baseDir}, nil
}

// Save stores the uploaded file under a fresh name and returns the
// reference to keep on the profile.
func (s *PictureStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", ErrUnsupportedType
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.baseDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return name, nil
}

// Path resolves a stored reference to its location on disk.
func (s *PictureStore) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}
