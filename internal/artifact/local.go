package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/bundlesize/internal/contract"
	"github.com/huangsam/bundlesize/schema"
)

// LocalStore keeps artifacts as files under a directory, for CI caches and local runs.
type LocalStore struct {
	Dir string
}

var _ contract.ArtifactStore = &LocalStore{} // Compile-time check

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{Dir: dir}
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(key))
}

// Upload writes routes as JSON under key, creating parent directories.
func (s *LocalStore) Upload(_ context.Context, key string, routes *schema.RouteSizes) error {
	data, err := routes.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode routes: %w", err)
	}
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", target, err)
	}
	return nil
}

// Download reads routes from key. A missing file yields contract.ErrNoBaseline.
func (s *LocalStore) Download(_ context.Context, key string) (*schema.RouteSizes, error) {
	target := s.path(key)
	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("artifact %s not found: %w", target, contract.ErrNoBaseline)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", target, err)
	}
	routes, err := schema.ParseRouteSizes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode artifact %s: %w", target, err)
	}
	return routes, nil
}
