package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
)

// SnapshotRepo stores pattern snapshots as JSONB rows keyed by
// (mode, opponent_id).
type SnapshotRepo struct {
	db *sql.DB
}

// NewSnapshotRepo creates a SnapshotRepo.
func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// LoadSnapshot returns the stored snapshot, or (nil, nil) when the
// opponent has never been saved.
func (r *SnapshotRepo) LoadSnapshot(ctx context.Context, mode, opponentID string) (*model.Snapshot, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM rps_snapshots WHERE mode = $1 AND opponent_id = $2`,
		mode, opponentID,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// SaveSnapshot upserts the snapshot row.
func (r *SnapshotRepo) SaveSnapshot(ctx context.Context, mode, opponentID string, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO rps_snapshots (mode, opponent_id, data, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (mode, opponent_id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		mode, opponentID, data)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (r *SnapshotRepo) Close() error { return r.db.Close() }
