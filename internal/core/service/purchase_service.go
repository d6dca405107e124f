package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/metrics"
	"github.com/rl1809/seckill/internal/port"
)

// MaxCustomerIDLen is the widest customer id the ledger stores.
const MaxCustomerIDLen = 64

// PurchaseService executes purchases: token check, then record insert and
// stock decrement committed together in one transaction.
type PurchaseService struct {
	tx          port.Transactor
	codec       *TokenCodec
	log         logger.Logger
	metrics     *metrics.Recorder
	commitQueue chan domain.PurchaseRecord
}

func NewPurchaseService(tx port.Transactor, codec *TokenCodec, log logger.Logger, m *metrics.Recorder, queueSize int) *PurchaseService {
	return &PurchaseService{
		tx:          tx,
		codec:       codec,
		log:         log,
		metrics:     m,
		commitQueue: make(chan domain.PurchaseRecord, queueSize),
	}
}

// Execute returns the committed purchase, or one of ErrInvalidRequest,
// ErrAlreadyPurchased, ErrSoldOut or ErrInternal. ErrInternal leaves no
// durable effect behind.
func (s *PurchaseService) Execute(ctx context.Context, itemID int64, customerID, token string, now time.Time) (*domain.PurchaseResult, error) {
	if customerID == "" || len(customerID) > MaxCustomerIDLen || !s.codec.Verify(itemID, token) {
		s.metrics.Purchase(domain.PurchaseInvalidRequest.String())
		return nil, ErrInvalidRequest
	}

	// Once the insert runs the unit must reach commit or rollback, so the
	// caller's cancellation is not propagated into the transaction.
	txCtx := context.WithoutCancel(ctx)

	var record *domain.PurchaseRecord
	err := s.tx.WithinTx(txCtx, func(ctx context.Context, tx port.PurchaseTx) error {
		inserted, err := tx.InsertPurchase(ctx, itemID, customerID, now)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		if !inserted {
			return ErrAlreadyPurchased
		}

		rows, err := tx.DecrementStock(ctx, itemID, now)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if rows == 0 {
			return ErrSoldOut
		}

		record, err = tx.FindPurchase(ctx, itemID, customerID)
		if err != nil {
			return fmt.Errorf("find purchase: %w", err)
		}
		if record == nil {
			return errors.New("purchase record missing after insert")
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrAlreadyPurchased) || errors.Is(err, ErrSoldOut) {
			s.metrics.Purchase(StateOf(err).String())
			return nil, err
		}

		s.log.ErrorContext(ctx, "purchase failed",
			"item_id", itemID,
			"customer_id", customerID,
			"error", err,
		)
		s.metrics.Purchase(domain.PurchaseInternalError.String())
		return nil, ErrInternal
	}

	s.metrics.Purchase(domain.PurchaseSuccess.String())
	s.publish(ctx, *record)

	return &domain.PurchaseResult{
		ItemID: itemID,
		State:  domain.PurchaseSuccess,
		Record: record,
	}, nil
}

// publish queues the commit for the cache workers without blocking the
// purchase path. A dropped event only delays cache refresh until the TTL.
func (s *PurchaseService) publish(ctx context.Context, record domain.PurchaseRecord) {
	select {
	case s.commitQueue <- record:
	default:
		s.log.WarnContext(ctx, "commit queue full, dropping cache invalidation", "item_id", record.ItemID)
	}
}

func (s *PurchaseService) GetCommitQueue() <-chan domain.PurchaseRecord {
	return s.commitQueue
}

func (s *PurchaseService) Close() {
	close(s.commitQueue)
}
