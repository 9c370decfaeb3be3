package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// SnapshotTTL bounds how long a user's last fetched to-do list is kept.
	// An expired snapshot makes the next background refresh reconcile.
	SnapshotTTL = 24 * time.Hour

	snapshotKeyPrefix = "todo-snapshot"
)

// CachedTodo is the to-do read model kept in a snapshot.
type CachedTodo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ScheduledAt time.Time `json:"scheduled_at"`
	ImageURL    string    `json:"image_url,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
}

// Snapshot is the list a user's reminders were last reconciled against.
type Snapshot struct {
	Items     []CachedTodo
	FetchedAt time.Time
}

// SnapshotCache stores one Snapshot per user as a Redis hash.
// Key format: "todo-snapshot:{userID}"
type SnapshotCache struct {
	client *RedisClient
}

// NewSnapshotCache creates a SnapshotCache backed by r.
func NewSnapshotCache(r *RedisClient) *SnapshotCache {
	return &SnapshotCache{client: r}
}

// Get returns the user's snapshot, or redis.Nil when none is stored.
func (c *SnapshotCache) Get(ctx context.Context, userID string) (*Snapshot, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, redis.Nil
	}

	var items []CachedTodo
	if err := json.Unmarshal([]byte(vals["items"]), &items); err != nil {
		return nil, fmt.Errorf("cache parse items: %w", err)
	}
	fetched, err := strconv.ParseInt(vals["fetched_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cache parse fetched_at: %w", err)
	}
	return &Snapshot{Items: items, FetchedAt: time.Unix(fetched, 0).UTC()}, nil
}

// Set replaces the user's snapshot and resets its TTL.
func (c *SnapshotCache) Set(ctx context.Context, userID string, snap *Snapshot) error {
	items := snap.Items
	if items == nil {
		items = []CachedTodo{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache encode items: %w", err)
	}

	key := c.key(userID)
	_, err = c.client.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"items", b,
			"fetched_at", snap.FetchedAt.Unix(),
		)
		pipe.Expire(ctx, key, SnapshotTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Invalidate drops the user's snapshot so the next refresh reconciles.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Client().Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (c *SnapshotCache) key(userID string) string {
	return snapshotKeyPrefix + ":" + userID
}
