package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "draft:cart:"

// RedisSnapshotStore keeps draft snapshots under one namespaced key per
// cart. Key absence means no draft; an unreadable value decodes to empty.
type RedisSnapshotStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotStore constructs a redis-backed snapshot store. A zero
// ttl keeps snapshots until explicitly cleared.
func NewRedisSnapshotStore(client *redis.Client, ttl time.Duration) *RedisSnapshotStore {
	return &RedisSnapshotStore{client: client, ttl: ttl}
}

func snapshotKey(cartID string) string {
	return snapshotKeyPrefix + cartID
}

// Save stores the items, or deletes the key when the draft is empty.
func (s *RedisSnapshotStore) Save(ctx context.Context, cartID string, items []LineItem) error {
	if len(items) == 0 {
		return s.Delete(ctx, cartID)
	}
	payload, err := EncodeSnapshot(items)
	if err != nil {
		return fmt.Errorf("draft: encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(cartID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft: save snapshot: %w", err)
	}
	return nil
}

// Load restores the items for cartID. A missing key yields an empty draft.
func (s *RedisSnapshotStore) Load(ctx context.Context, cartID string) ([]LineItem, error) {
	raw, err := s.client.Get(ctx, snapshotKey(cartID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("draft: load snapshot: %w", err)
	}
	return DecodeSnapshot(raw), nil
}

// Delete removes the durable key entirely.
func (s *RedisSnapshotStore) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, snapshotKey(cartID)).Err(); err != nil {
		return fmt.Errorf("draft: delete snapshot: %w", err)
	}
	return nil
}
