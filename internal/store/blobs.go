package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Blobs keeps uploaded file contents on disk under random stored names,
// so original names never touch the filesystem.
type Blobs struct {
	dir string
}

func NewBlobs(dir string) (*Blobs, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &Blobs{dir: dir}, nil
}

// Save streams r into a new blob and returns its stored name and size.
func (s *Blobs) Save(originalName string, r io.Reader) (string, int64, error) {
	storedName := uuid.NewString() + filepath.Ext(originalName)
	f, err := os.Create(filepath.Join(s.dir, storedName))
	if err != nil {
		return "", 0, err
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, storedName))
		return "", 0, err
	}
	return storedName, size, nil
}

// Remove deletes a blob. A blob that is already gone is not an error,
// eviction must be idempotent.
func (s *Blobs) Remove(storedName string) error {
	err := os.Remove(filepath.Join(s.dir, storedName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *Blobs) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}
