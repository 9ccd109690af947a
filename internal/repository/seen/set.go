package seen

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Set tracks content hashes of articles that have already been
// processed, so repeated pipeline runs skip known articles. The set
// survives restarts through a JSON snapshot on disk.
type Set struct {
	mu     sync.Mutex
	ids    map[string]struct{}
	path   string
	logger *zap.Logger
}

type snapshot struct {
	IDs     []string  `json:"ids"`
	SavedAt time.Time `json:"saved_at"`
}

// Load reads the snapshot at path. A missing file yields an empty set;
// a corrupt file is an error.
func Load(path string, logger *zap.Logger) (*Set, error) {
	s := &Set{
		ids:    make(map[string]struct{}),
		path:   path,
		logger: logger,
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read seen set %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse seen set %s: %w", path, err)
	}

	for _, id := range snap.IDs {
		s.ids[id] = struct{}{}
	}

	logger.Info("loaded seen set",
		zap.String("path", path),
		zap.Int("ids", len(s.ids)),
	)
	return s, nil
}

// Contains reports whether the ID was processed before.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// Add marks IDs as processed.
func (s *Set) Add(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Len returns the number of tracked IDs.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// Save writes the snapshot atomically: a temp file in the same
// directory is renamed over the target.
func (s *Set) Save() error {
	s.mu.Lock()
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	sort.Strings(ids)

	data, err := json.MarshalIndent(snapshot{IDs: ids, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen set: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".seen-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Reset forgets every tracked ID and removes the snapshot file.
func (s *Set) Reset() error {
	s.mu.Lock()
	s.ids = make(map[string]struct{})
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove seen set %s: %w", s.path, err)
	}
	return nil
}
