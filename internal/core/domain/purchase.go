package domain

import "time"

type PurchaseState int

const (
	PurchaseSuccess        PurchaseState = 1
	PurchaseSoldOut        PurchaseState = 0
	PurchaseRepeated       PurchaseState = -1
	PurchaseInternalError  PurchaseState = -2
	PurchaseInvalidRequest PurchaseState = -3
)

func (s PurchaseState) String() string {
	switch s {
	case PurchaseSuccess:
		return "success"
	case PurchaseSoldOut:
		return "sold_out"
	case PurchaseRepeated:
		return "already_purchased"
	case PurchaseInternalError:
		return "internal_error"
	case PurchaseInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Info is the human readable message for the state.
func (s PurchaseState) Info() string {
	switch s {
	case PurchaseSuccess:
		return "purchase succeeded"
	case PurchaseSoldOut:
		return "sold out"
	case PurchaseRepeated:
		return "already purchased"
	case PurchaseInternalError:
		return "internal error"
	case PurchaseInvalidRequest:
		return "forged or stale purchase attempt"
	default:
		return "unknown state"
	}
}

// PurchaseRecord marks that CustomerID claimed one unit of ItemID. It is
// keyed by (ItemID, CustomerID) and never changes once written.
type PurchaseRecord struct {
	ItemID     int64
	CustomerID string
	CreatedAt  time.Time
	Item       *Item
}

type PurchaseResult struct {
	ItemID int64
	State  PurchaseState
	Record *PurchaseRecord
}
