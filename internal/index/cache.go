package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/qanooni-ai/qanooni/internal/domain"
)

// Store persists index generations to a single JSON cache file. The
// version stamp inside the payload is the sole compatibility gate: any
// structural change to the records must bump the configured version.
type Store struct {
	path    string
	version int
}

func NewStore(path string, version int) *Store {
	return &Store{path: path, version: version}
}

// Persist writes the generation durably. The payload is written to a
// temp file in the cache directory and renamed into place, so a reader
// hydrating concurrently can never observe a partial write.
func (s *Store) Persist(gen *domain.Generation) error {
	data, err := json.Marshal(gen)
	if err != nil {
		return fmt.Errorf("failed to marshal index cache: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}

	return nil
}

// Hydrate loads the cached generation. A missing, unreadable, or
// version-mismatched payload is indistinguishable from no cache at all:
// every such case returns domain.ErrCacheNotFound so the caller rebuilds.
func (s *Store) Hydrate() (*domain.Generation, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrCacheNotFound
		}
		log.Printf("index cache: unreadable %s: %v", s.path, err)
		return nil, domain.ErrCacheNotFound
	}

	var gen domain.Generation
	if err := json.Unmarshal(data, &gen); err != nil {
		log.Printf("index cache: corrupt %s: %v", s.path, err)
		return nil, domain.ErrCacheNotFound
	}

	if gen.Version != s.version {
		log.Printf("index cache: version %d does not match expected %d, discarding", gen.Version, s.version)
		return nil, domain.ErrCacheNotFound
	}

	return &gen, nil
}
