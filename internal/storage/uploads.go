package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore saves uploaded media to a local directory. Stored files get a
// uuid name so user-supplied file names never touch the filesystem.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// Save writes the multipart file to disk and returns the URL path the file
// is served under.
func (s *FileStore) Save(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}

	return "/uploads/" + name, nil
}

func (s *FileStore) Remove(urlPath string) error {
	return os.Remove(filepath.Join(s.Dir, filepath.Base(urlPath)))
}
