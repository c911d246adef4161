// Package file implements the snapshot store as one JSON document per
// opponent under a configurable directory.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
)

// Store writes snapshots to dir/<mode>/<opponentID>.json.
type Store struct {
	dir string
}

// NewStore creates the root directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(mode, opponentID string) string {
	return filepath.Join(s.dir, sanitize(mode), sanitize(opponentID)+".json")
}

// sanitize keeps opaque ids from escaping the snapshot directory.
func sanitize(id string) string {
	id = strings.ReplaceAll(id, string(os.PathSeparator), "_")
	id = strings.ReplaceAll(id, "..", "_")
	if id == "" {
		return "_"
	}
	return id
}

// LoadSnapshot reads an opponent's snapshot, returning (nil, nil) when
// none has been saved yet.
func (s *Store) LoadSnapshot(_ context.Context, mode, opponentID string) (*model.Snapshot, error) {
	data, err := os.ReadFile(s.path(mode, opponentID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot writes the snapshot atomically via a temp file rename,
// so a crash mid-write never leaves a truncated document.
func (s *Store) SaveSnapshot(_ context.Context, mode, opponentID string, snap *model.Snapshot) error {
	path := s.path(mode, opponentID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create mode dir: %w", err)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *Store) Close() error { return nil }
