// Package repository persists per-opponent pattern snapshots behind a
// single interface with interchangeable backends (JSON files, Postgres,
// Redis). The decision core never knows which backend is active.
package repository

import (
	"context"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
)

// SnapshotStore loads and saves per-opponent pattern snapshots.
// LoadSnapshot returns (nil, nil) when no snapshot exists. Saves are
// best-effort from the caller's point of view: a failure must never
// affect decision-making.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, mode, opponentID string) (*model.Snapshot, error)
	SaveSnapshot(ctx context.Context, mode, opponentID string, snap *model.Snapshot) error
	Close() error
}
