package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/port"
)

type purchaseKey struct {
	itemID     int64
	customerID string
}

// fakeStore serializes transactions on one mutex and restores a snapshot on
// rollback, which is enough to model the SQL store's all-or-nothing unit.
type fakeStore struct {
	mu           sync.Mutex
	items        map[int64]domain.Item
	purchases    map[purchaseKey]domain.PurchaseRecord
	getCalls     int
	getErr       error
	insertErr    error
	decrementErr error
}

func newFakeStore(items ...domain.Item) *fakeStore {
	s := &fakeStore{
		items:     make(map[int64]domain.Item),
		purchases: make(map[purchaseKey]domain.PurchaseRecord),
	}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func (s *fakeStore) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	it, ok := s.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (s *fakeStore) ListItems(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.Item, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	if offset >= len(items) {
		return []domain.Item{}, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.PurchaseTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make(map[int64]domain.Item, len(s.items))
	for k, v := range s.items {
		items[k] = v
	}
	purchases := make(map[purchaseKey]domain.PurchaseRecord, len(s.purchases))
	for k, v := range s.purchases {
		purchases[k] = v
	}

	if err := fn(ctx, &fakeTx{s: s}); err != nil {
		s.items = items
		s.purchases = purchases
		return err
	}
	return nil
}

func (s *fakeStore) quantity(itemID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[itemID].RemainingQuantity
}

func (s *fakeStore) purchaseCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.purchases)
}

// fakeTx runs with fakeStore.mu held.
type fakeTx struct {
	s *fakeStore
}

func (t *fakeTx) InsertPurchase(ctx context.Context, itemID int64, customerID string, now time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if t.s.insertErr != nil {
		return false, t.s.insertErr
	}
	key := purchaseKey{itemID, customerID}
	if _, ok := t.s.purchases[key]; ok {
		return false, nil
	}
	t.s.purchases[key] = domain.PurchaseRecord{ItemID: itemID, CustomerID: customerID, CreatedAt: now}
	return true, nil
}

func (t *fakeTx) DecrementStock(ctx context.Context, itemID int64, now time.Time) (int64, error) {
	if t.s.decrementErr != nil {
		return 0, t.s.decrementErr
	}
	it, ok := t.s.items[itemID]
	if !ok || it.Window(now) != domain.WindowOpen || it.RemainingQuantity <= 0 {
		return 0, nil
	}
	it.RemainingQuantity--
	t.s.items[itemID] = it
	return 1, nil
}

func (t *fakeTx) FindPurchase(ctx context.Context, itemID int64, customerID string) (*domain.PurchaseRecord, error) {
	rec, ok := t.s.purchases[purchaseKey{itemID, customerID}]
	if !ok {
		return nil, nil
	}
	it := t.s.items[itemID]
	rec.Item = &it
	return &rec, nil
}

type fakeCache struct {
	mu      sync.Mutex
	items   map[int64]domain.Item
	gets    int
	sets    int
	deletes int
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{items: make(map[int64]domain.Item)}
}

func (c *fakeCache) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	it, ok := c.items[itemID]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (c *fakeCache) SetItem(ctx context.Context, item domain.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	if c.setErr != nil {
		return c.setErr
	}
	c.items[item.ID] = item
	return nil
}

func (c *fakeCache) DeleteItem(ctx context.Context, itemID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.deletes++
	delete(c.items, itemID)
	return nil
}

func (c *fakeCache) has(itemID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[itemID]
	return ok
}
