package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const timestampLayout = "20060102_150405"

// Store writes timestamped JSON snapshots into a directory, one file
// per pipeline run, and reads back the most recent one.
type Store struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// New creates a snapshot store. Files are named <prefix>_<timestamp>.json.
func New(dir, prefix string, logger *zap.Logger) *Store {
	return &Store{dir: dir, prefix: prefix, logger: logger}
}

// Write marshals v into a new timestamped file and returns its path.
func (s *Store) Write(v any) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", s.dir, err)
	}

	name := fmt.Sprintf("%s_%s.json", s.prefix, time.Now().UTC().Format(timestampLayout))
	path := filepath.Join(s.dir, name)

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write snapshot %s: %w", path, err)
	}

	s.logger.Debug("wrote snapshot", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

// Latest returns the path of the most recently modified snapshot.
// Returns os.ErrNotExist when the directory holds no snapshots.
func (s *Store) Latest() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", os.ErrNotExist
		}
		return "", fmt.Errorf("read dir %s: %w", s.dir, err)
	}

	var latest string
	var latestMod time.Time
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, s.prefix+"_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().After(latestMod) {
			latest = filepath.Join(s.dir, name)
			latestMod = info.ModTime()
		}
	}

	if latest == "" {
		return "", os.ErrNotExist
	}
	return latest, nil
}

// ReadLatest unmarshals the most recent snapshot into v.
func (s *Store) ReadLatest(v any) error {
	path, err := s.Latest()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read snapshot %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return nil
}
