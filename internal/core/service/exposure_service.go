package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/metrics"
	"github.com/rl1809/seckill/internal/port"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// ExposureService decides whether an item is on sale and hands out access
// tokens. Item reads go to the cache first and fill it from the store on a miss.
type ExposureService struct {
	store   port.ItemStore
	cache   port.ItemCache
	codec   *TokenCodec
	log     logger.Logger
	metrics *metrics.Recorder
}

func NewExposureService(store port.ItemStore, cache port.ItemCache, codec *TokenCodec, log logger.Logger, m *metrics.Recorder) *ExposureService {
	return &ExposureService{
		store:   store,
		cache:   cache,
		codec:   codec,
		log:     log,
		metrics: m,
	}
}

func (s *ExposureService) Expose(ctx context.Context, itemID int64, now time.Time) (domain.Exposure, error) {
	item, err := s.lookup(ctx, itemID)
	if err != nil {
		return domain.Exposure{}, err
	}

	exposure := s.decide(item, itemID, now)
	s.metrics.Exposure(string(exposure.State))
	return exposure, nil
}

func (s *ExposureService) decide(item *domain.Item, itemID int64, now time.Time) domain.Exposure {
	if item == nil {
		return domain.Exposure{State: domain.ExposureNotFound, ItemID: itemID}
	}

	switch item.Window(now) {
	case domain.WindowNotYetOpen:
		return domain.Exposure{
			State:     domain.ExposureNotYetOpen,
			ItemID:    itemID,
			Now:       now,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		}
	case domain.WindowClosed:
		return domain.Exposure{
			State:     domain.ExposureClosed,
			ItemID:    itemID,
			Now:       now,
			StartTime: item.StartTime,
			EndTime:   item.EndTime,
		}
	default:
		return domain.Exposure{
			State:  domain.ExposureOpen,
			ItemID: itemID,
			Token:  s.codec.Derive(itemID),
		}
	}
}

// lookup returns nil, nil for an unknown item. A failing cache is treated as
// a miss; a failing store is returned to the caller.
func (s *ExposureService) lookup(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.cache.GetItem(ctx, itemID)
	switch {
	case err != nil:
		s.metrics.CacheLookup("error")
		s.log.WarnContext(ctx, "item cache read failed", "item_id", itemID, "error", err)
	case item != nil:
		s.metrics.CacheLookup("hit")
		return item, nil
	default:
		s.metrics.CacheLookup("miss")
	}

	item, err = s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, nil
	}

	if err := s.cache.SetItem(ctx, *item); err != nil {
		s.log.WarnContext(ctx, "item cache fill failed", "item_id", itemID, "error", err)
	}

	return item, nil
}

// GetItem reads one item from the store.
func (s *ExposureService) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", itemID, err)
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

// ListItems pages through items newest first. limit is clamped to [1, 100].
func (s *ExposureService) ListItems(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := s.store.ListItems(ctx, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}
