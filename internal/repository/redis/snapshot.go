package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/karlbackan/gigaverse-bot-sub002/internal/model"
)

func snapKey(mode, opponentID string) string {
	return "rps:snap:" + mode + ":" + opponentID
}

// LoadSnapshot returns the stored snapshot JSON, or (nil, nil) when the
// key does not exist.
func (c *Client) LoadSnapshot(ctx context.Context, mode, opponentID string) (*model.Snapshot, error) {
	data, err := c.rdb.Get(ctx, snapKey(mode, opponentID)).Bytes()
	if err == redis.Nil {
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

// SaveSnapshot stores the snapshot JSON with no expiry; retention is an
// external policy.
func (c *Client) SaveSnapshot(ctx context.Context, mode, opponentID string, snap *model.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.rdb.Set(ctx, snapKey(mode, opponentID), data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
