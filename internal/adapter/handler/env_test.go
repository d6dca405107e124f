package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/seckill/internal/adapter/storage"
	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/metrics"
)

type mapCache struct {
	mu    sync.Mutex
	items map[int64]domain.Item
}

func (c *mapCache) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (c *mapCache) SetItem(ctx context.Context, item domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
	return nil
}

func (c *mapCache) DeleteItem(ctx context.Context, itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, itemID)
	return nil
}

type testEnv struct {
	store    *storage.SQLAdapter
	codec    *service.TokenCodec
	exposure *service.ExposureService
	purchase *service.PurchaseService
	clock    time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := storage.OpenDB(ctx, storage.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.Migrate(ctx, db.DB, storage.DriverSQLite, logger.Discard()))

	store := storage.NewSQLiteAdapter(db)
	codec := service.NewTokenCodec("handler-secret")
	log := logger.Discard()
	m := metrics.New()

	purchase := service.NewPurchaseService(store, codec, log, m, 100)
	t.Cleanup(purchase.Close)

	return &testEnv{
		store:    store,
		codec:    codec,
		exposure: service.NewExposureService(store, &mapCache{items: map[int64]domain.Item{}}, codec, log, m),
		purchase: purchase,
		clock:    time.UnixMilli(150_000),
	}
}

func (e *testEnv) createItem(t *testing.T, qty int64) int64 {
	t.Helper()
	id, err := e.store.CreateItem(context.Background(), domain.Item{
		Name:              "phone",
		RemainingQuantity: qty,
		StartTime:         time.UnixMilli(100_000),
		EndTime:           time.UnixMilli(200_000),
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) now() time.Time {
	return e.clock
}
