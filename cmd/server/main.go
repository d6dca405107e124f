package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/seckill/internal/adapter/handler"
	"github.com/rl1809/seckill/internal/adapter/handler/pb"
	"github.com/rl1809/seckill/internal/adapter/storage"
	"github.com/rl1809/seckill/internal/config"
	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/core/service"
	"github.com/rl1809/seckill/internal/logger"
	"github.com/rl1809/seckill/internal/metrics"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Log.Level).With("app", cfg.App.Name, "env", cfg.App.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := storage.OpenDB(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to connect database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	if cfg.Database.Driver == config.DriverMySQL {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}
	log.Info("connected to database", "driver", cfg.Database.Driver)

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db.DB, cfg.Database.Driver, log); err != nil {
			log.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	// Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Cache.RedisAddr,
		Password: cfg.Cache.RedisPassword,
		DB:       cfg.Cache.RedisDB,
		PoolSize: cfg.Cache.PoolSize,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("failed to connect redis", "addr", cfg.Cache.RedisAddr, "error", err)
		os.Exit(1)
	}
	log.Info("connected to redis", "addr", cfg.Cache.RedisAddr)

	// Adapters and services
	sqlAdapter, err := storage.NewSQLAdapter(db, cfg.Database.Driver)
	if err != nil {
		log.Error("failed to build store", "error", err)
		os.Exit(1)
	}
	redisAdapter := storage.NewRedisAdapter(rdb, cfg.Cache.ItemTTL)
	recorder := metrics.New()
	codec := service.NewTokenCodec(cfg.Sale.TokenSecret)

	exposureService := service.NewExposureService(sqlAdapter, redisAdapter, codec, log, recorder)
	purchaseService := service.NewPurchaseService(sqlAdapter, codec, log, recorder, cfg.Sale.QueueSize)

	if cfg.Sale.SeedItemName != "" {
		seedItem(ctx, log, sqlAdapter, cfg.Sale)
	}

	// Cache invalidation workers
	var wg sync.WaitGroup
	for i := 0; i < cfg.Sale.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			service.InvalidateLoop(id, purchaseService.GetCommitQueue(), redisAdapter, log)
		}(i)
	}
	log.Info("started invalidation workers", "count", cfg.Sale.WorkerCount)

	// gRPC server
	grpcServer := grpc.NewServer()
	pb.RegisterFlashSaleServer(grpcServer, handler.NewGRPCHandler(exposureService, purchaseService))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Error("failed to listen", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}

	go func() {
		log.Info("gRPC server listening", "addr", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("gRPC server error", "error", err)
		}
	}()

	// HTTP server
	router := handler.NewRouter(handler.NewHTTPHandler(exposureService, purchaseService, log), log, handler.RouterConfig{
		RateLimit: cfg.Server.RateLimit,
		Metrics:   recorder.Handler(),
		Health: map[string]handler.HealthChecker{
			"database": sqlAdapter,
			"redis":    redisAdapter,
		},
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	log.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	log.Info("gRPC server stopped")

	// No more purchases can publish, drain the commit queue.
	purchaseService.Close()
	wg.Wait()
	log.Info("workers stopped")

	rdb.Close()
	db.Close()
	log.Info("connections closed")
}

func seedItem(ctx context.Context, log logger.Logger, store *storage.SQLAdapter, sale config.SaleConfig) {
	now := time.Now()
	id, err := store.CreateItem(ctx, domain.Item{
		Name:              sale.SeedItemName,
		RemainingQuantity: sale.SeedItemStock,
		StartTime:         now,
		EndTime:           now.Add(sale.SeedItemWindow),
	})
	if err != nil {
		log.Error("failed to seed item", "name", sale.SeedItemName, "error", err)
		os.Exit(1)
	}
	log.Info("seeded item", "item_id", id, "name", sale.SeedItemName, "stock", sale.SeedItemStock, "window", sale.SeedItemWindow)
}
