//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
	"github.com/karlbackan/gigaverse-bot-sub002/internal/testutil"
)

var testRDB *goredis.Client

func setup(t *testing.T) *Client {
	t.Helper()
	if testRDB == nil {
		testRDB = testutil.SetupRedis(t)
	}
	testutil.CleanupRedis(t, testRDB)
	return NewClientFromPool(testRDB)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	snap := &model.Snapshot{
		Mode:       "dungeon",
		OpponentID: "skeleton-1",
		Wins:       2,
		Losses:     1,
		Rounds:     3,
		SavedAt:    time.Now().UTC().Truncate(time.Second),
	}

	if err := c.SaveSnapshot(ctx, "dungeon", "skeleton-1", snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, err := c.LoadSnapshot(ctx, "dungeon", "skeleton-1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if got.Wins != 2 || got.Rounds != 3 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestSnapshotMissingReturnsNil(t *testing.T) {
	c := setup(t)

	got, err := c.LoadSnapshot(context.Background(), "dungeon", "nonexistent")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing snapshot, got %+v", got)
	}
}

func TestSnapshotKeysScopedByMode(t *testing.T) {
	c := setup(t)
	ctx := context.Background()

	snap := &model.Snapshot{Mode: "dungeon", OpponentID: "skeleton-2", Rounds: 8}
	if err := c.SaveSnapshot(ctx, "dungeon", "skeleton-2", snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := c.LoadSnapshot(ctx, "arena", "skeleton-2")
	if err != nil {
		t.Fatalf("load other mode: %v", err)
	}
	if got != nil {
		t.Fatal("snapshot leaked across modes")
	}
}
