package service

import (
	"context"
	"time"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/port"
)

const invalidateTimeout = 2 * time.Second

// InvalidateLoop drops the cached item for every committed purchase so the
// next exposure reloads it from the store. It returns when queue is closed.
func InvalidateLoop(id int, queue <-chan domain.PurchaseRecord, cache port.ItemCache, log logger.Logger) {
	for record := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), invalidateTimeout)

		if err := cache.DeleteItem(ctx, record.ItemID); err != nil {
			log.Warn("cache invalidation failed",
				"worker", id,
				"item_id", record.ItemID,
				"error", err,
			)
		}

		cancel()
	}
}
