//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/testutil"
)

var testDB *sql.DB

func setup(t *testing.T) *SnapshotRepo {
	t.Helper()
	if testDB == nil {
		testDB = testutil.SetupDB(t)
	}
	testutil.CleanupDB(t, testDB)
	return NewSnapshotRepo(testDB)
}

func TestSnapshotUpsertAndLoad(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	snap := &model.Snapshot{
		Mode:       "dungeon",
		OpponentID: "goblin-1",
		Wins:       4,
		Losses:     2,
		Ties:       1,
		Rounds:     7,
		SavedAt:    time.Now().UTC().Truncate(time.Second),
	}

	if err := repo.SaveSnapshot(ctx, "dungeon", "goblin-1", snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, "dungeon", "goblin-1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if got.Wins != 4 || got.Rounds != 7 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestSnapshotUpsertOverwrites(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	first := &model.Snapshot{Mode: "dungeon", OpponentID: "goblin-2", Rounds: 5}
	if err := repo.SaveSnapshot(ctx, "dungeon", "goblin-2", first); err != nil {
		t.Fatalf("first save: %v", err)
	}
	second := &model.Snapshot{Mode: "dungeon", OpponentID: "goblin-2", Rounds: 12}
	if err := repo.SaveSnapshot(ctx, "dungeon", "goblin-2", second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, "dungeon", "goblin-2")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got.Rounds != 12 {
		t.Fatalf("expected overwrite to 12 rounds, got %d", got.Rounds)
	}
}

func TestSnapshotMissingReturnsNil(t *testing.T) {
	repo := setup(t)

	got, err := repo.LoadSnapshot(context.Background(), "dungeon", "nonexistent")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing snapshot, got %+v", got)
	}
}

func TestSnapshotScopedByMode(t *testing.T) {
	repo := setup(t)
	ctx := context.Background()

	snap := &model.Snapshot{Mode: "dungeon", OpponentID: "goblin-3", Rounds: 9}
	if err := repo.SaveSnapshot(ctx, "dungeon", "goblin-3", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.LoadSnapshot(ctx, "arena", "goblin-3")
	if err != nil {
		t.Fatalf("load other mode: %v", err)
	}
	if got != nil {
		t.Fatal("snapshot leaked across modes")
	}
}
