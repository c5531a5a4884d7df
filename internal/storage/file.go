package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps every record as its own file within a base directory. Keys
// are path-escaped so usernames can never leave the directory.
type FileStore struct {
	baseDir string
	mu      sync.RWMutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: can't create storage dir", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.pathFor(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NotFoundError
	}
	if err != nil {
		return nil, fmt.Errorf("%w: can't read record", err)
	}
	return data, nil
}

func (s *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o600); err != nil {
		return fmt.Errorf("%w: can't write record", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: can't replace record", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.pathFor(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: can't delete record", err)
	}
	return nil
}

func (s *FileStore) pathFor(key string) string {
	return filepath.Join(s.baseDir, url.PathEscape(key)+".json")
}
