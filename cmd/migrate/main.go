package main

import (
	"context"
	"os"

	"github.com/rl1809/seckill/internal/adapter/storage"
	"github.com/rl1809/seckill/internal/config"
	"github.com/rl1809/seckill/internal/logger"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Log.Level)
	ctx := context.Background()

	db, err := storage.OpenDB(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Error("failed to connect database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db.DB, cfg.Database.Driver, log); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied", "driver", cfg.Database.Driver)
}
