package port

import (
	"context"

	"github.com/rl1809/seckill/internal/core/domain"
)

type ItemCache interface {
	// GetItem returns nil, nil on a cache miss
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)

	// SetItem stores a snapshot read from the ItemStore
	SetItem(ctx context.Context, item domain.Item) error

	// DeleteItem drops the snapshot after the stored item changed
	DeleteItem(ctx context.Context, itemID int64) error
}
