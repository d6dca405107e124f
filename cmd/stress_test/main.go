package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kelseyhightower/envconfig"

	"github.com/rl1809/seckill/internal/adapter/storage"
	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/metrics"
)

type stressConfig struct {
	Driver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	DSN       string `envconfig:"DB_DSN" default:":memory:"`
	Stock     int64  `envconfig:"STRESS_STOCK" default:"20"`
	Customers int    `envconfig:"STRESS_CUSTOMERS" default:"50"`
}

func main() {
	var cfg stressConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("warn")
	ctx := context.Background()

	db, err := storage.OpenDB(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db.DB, cfg.Driver, log); err != nil {
		log.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSQLAdapter(db, cfg.Driver)
	if err != nil {
		log.Error("failed to build store", "error", err)
		os.Exit(1)
	}

	now := time.Now()
	itemID, err := store.CreateItem(ctx, domain.Item{
		Name:              "stress-" + uuid.NewString()[:8],
		RemainingQuantity: cfg.Stock,
		StartTime:         now.Add(-time.Minute),
		EndTime:           now.Add(time.Hour),
	})
	if err != nil {
		log.Error("failed to create item", "error", err)
		os.Exit(1)
	}

	codec := service.NewTokenCodec(uuid.NewString())
	token := codec.Derive(itemID)
	purchaseService := service.NewPurchaseService(store, codec, log, metrics.New(), cfg.Customers)
	defer purchaseService.Close()

	// Nothing is cached here, so the commit queue is simply drained.
	go func() {
		for range purchaseService.GetCommitQueue() {
		}
	}()

	var counts [5]atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < cfg.Customers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := purchaseService.Execute(ctx, itemID, uuid.NewString(), token, time.Now())
			counts[stateIndex(service.StateOf(err))].Add(1)
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := counts[stateIndex(domain.PurchaseSuccess)].Load()
	soldOut := counts[stateIndex(domain.PurchaseSoldOut)].Load()
	internal := counts[stateIndex(domain.PurchaseInternalError)].Load()

	expectedSuccess := cfg.Stock
	if int64(cfg.Customers) < expectedSuccess {
		expectedSuccess = int64(cfg.Customers)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Driver:           %s\n", cfg.Driver)
	fmt.Printf("Initial Stock:    %d\n", cfg.Stock)
	fmt.Printf("Customers:        %d\n", cfg.Customers)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold Out:         %d\n", soldOut)
	fmt.Printf("Internal Errors:  %d\n", internal)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	failed := false
	if int64(success) == expectedSuccess && int64(soldOut) == int64(cfg.Customers)-expectedSuccess {
		fmt.Printf("PASS: %d purchases succeeded, %d sold out\n", success, soldOut)
	} else {
		fmt.Printf("FAIL: expected %d success/%d sold out, got %d/%d\n",
			expectedSuccess, int64(cfg.Customers)-expectedSuccess, success, soldOut)
		failed = true
	}

	item, err := store.GetItem(ctx, itemID)
	if err != nil || item == nil {
		fmt.Printf("FAIL: could not read item back: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Final Stock:      %d\n", item.RemainingQuantity)

	if item.RemainingQuantity == cfg.Stock-expectedSuccess {
		fmt.Println("PASS: stock matches committed purchases")
	} else {
		fmt.Printf("FAIL: expected stock %d, got %d\n", cfg.Stock-expectedSuccess, item.RemainingQuantity)
		failed = true
	}

	if failed {
		os.Exit(1)
	}
}

// stateIndex maps a purchase state (1..-3) onto 0..4.
func stateIndex(s domain.PurchaseState) int {
	return 1 - int(s)
}
