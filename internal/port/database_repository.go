package port

import (
	"context"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
)

type ItemStore interface {
	// GetItem returns nil, nil when the item does not exist
	GetItem(ctx context.Context, itemID int64) (*domain.Item, error)

	// ListItems returns items newest first
	ListItems(ctx context.Context, offset, limit int) ([]domain.Item, error)
}

type PurchaseLedger interface {
	// InsertPurchase creates the (itemID, customerID) record. It returns false
	// when the store's uniqueness constraint rejected a second insert.
	InsertPurchase(ctx context.Context, itemID int64, customerID string, now time.Time) (bool, error)

	// FindPurchase returns nil, nil when no record exists
	FindPurchase(ctx context.Context, itemID int64, customerID string) (*domain.PurchaseRecord, error)
}

// PurchaseTx is the set of writes a purchase performs inside one transaction.
type PurchaseTx interface {
	PurchaseLedger

	// DecrementStock takes one unit if stock is positive and now is inside the
	// sale window, in a single conditional statement. It returns rows affected.
	DecrementStock(ctx context.Context, itemID int64, now time.Time) (int64, error)
}

type Transactor interface {
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx PurchaseTx) error) error
}
