package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dkoraitest/consultant-copilot/internal/types/interfaces"
)

// localStorage archives payloads under a directory on local disk.
type localStorage struct {
	root string
}

var _ interfaces.ObjectStorage = (*localStorage)(nil)

func newLocalStorage(root string) (*localStorage, error) {
	if root == "" {
		root = "./data/archive"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive root: %w", err)
	}
	return &localStorage{root: root}, nil
}

func (s *localStorage) resolve(key string) (string, error) {
	if !filepath.IsLocal(key) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

func (s *localStorage) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *localStorage) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archived object %q: %w", key, err)
	}
	return data, nil
}
