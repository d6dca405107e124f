package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/seckill/internal/core/domain"
)

const (
	itemKeyPrefix  = "item:"
	DefaultItemTTL = time.Minute
)

// RedisAdapter caches item snapshots as Redis hashes with a TTL. It never
// owns writes: entries are filled from the SQL store and deleted after stock
// changes.
type RedisAdapter struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisAdapter(client *redis.Client, ttl time.Duration) *RedisAdapter {
	if ttl <= 0 {
		ttl = DefaultItemTTL
	}
	return &RedisAdapter{client: client, ttl: ttl}
}

func (r *RedisAdapter) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	vals, err := r.client.HGetAll(ctx, itemKey(itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}

	item, err := decodeItem(vals)
	if err != nil {
		return nil, fmt.Errorf("cache decode item %d: %w", itemID, err)
	}
	return item, nil
}

// SetItem writes all fields and the TTL in one MULTI/EXEC.
func (r *RedisAdapter) SetItem(ctx context.Context, item domain.Item) error {
	key := itemKey(item.ID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"id", item.ID,
			"name", item.Name,
			"remaining_quantity", item.RemainingQuantity,
			"start_time", item.StartTime.UnixMilli(),
			"end_time", item.EndTime.UnixMilli(),
			"created_at", item.CreatedAt.UnixMilli(),
		)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (r *RedisAdapter) DeleteItem(ctx context.Context, itemID int64) error {
	if err := r.client.Del(ctx, itemKey(itemID)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func itemKey(itemID int64) string {
	return itemKeyPrefix + strconv.FormatInt(itemID, 10)
}

func decodeItem(vals map[string]string) (*domain.Item, error) {
	ints := make(map[string]int64, 5)
	for _, field := range []string{"id", "remaining_quantity", "start_time", "end_time", "created_at"} {
		n, err := strconv.ParseInt(vals[field], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", field, err)
		}
		ints[field] = n
	}

	return &domain.Item{
		ID:                ints["id"],
		Name:              vals["name"],
		RemainingQuantity: ints["remaining_quantity"],
		StartTime:         time.UnixMilli(ints["start_time"]),
		EndTime:           time.UnixMilli(ints["end_time"]),
		CreatedAt:         time.UnixMilli(ints["created_at"]),
	}, nil
}
