package upload

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// Store persists uploaded proof images and returns the reference stored with
// the proof record.
type Store interface {
	Save(filename string, r io.Reader) (string, error)
	Remove(path string) error
}

// FileStore writes uploads to a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the uploads directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save stores the stream under a collision-resistant name and returns the
// relative path used as the proof image reference.
func (s *FileStore) Save(filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("%d-%d%s", time.Now().UnixMilli(), rand.Int63n(1_000_000_000), filepath.Ext(filename))
	dest := filepath.Join(s.dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return dest, nil
}

// Remove deletes a previously saved upload. Only paths inside the store
// directory are removed.
func (s *FileStore) Remove(path string) error {
	if filepath.Dir(path) != filepath.Clean(s.dir) {
		return fmt.Errorf("remove upload: %q is outside the store", path)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}
