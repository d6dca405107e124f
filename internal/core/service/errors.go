package service

import (
	"errors"

	"github.com/rl1809/seckill/internal/core/domain"
)

var (
	ErrItemNotFound     = errors.New("item not found")
	ErrInvalidRequest   = errors.New("forged or stale purchase attempt")
	ErrAlreadyPurchased = errors.New("already purchased")
	ErrSoldOut          = errors.New("sold out")
	ErrInternal         = errors.New("internal error")
)

// StateOf maps a purchase error onto the state reported to callers. Unknown
// errors are internal.
func StateOf(err error) domain.PurchaseState {
	switch {
	case err == nil:
		return domain.PurchaseSuccess
	case errors.Is(err, ErrInvalidRequest):
		return domain.PurchaseInvalidRequest
	case errors.Is(err, ErrAlreadyPurchased):
		return domain.PurchaseRepeated
	case errors.Is(err, ErrSoldOut):
		return domain.PurchaseSoldOut
	default:
		return domain.PurchaseInternalError
	}
}
