package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/rl1809/seckill/internal/logger"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals
var migrateMu sync.Mutex

// Migrate applies every pending migration for driver ("mysql" or "sqlite").
// goose progress lines go to log.
func Migrate(ctx context.Context, db *sql.DB, driver string, log logger.Logger) error {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return err
	}

	files, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(files)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log.With("component", "migrate", "driver", driver)})
	defer goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("up migrations: %w", err)
	}
	return nil
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case DriverMySQL:
		return "mysql", nil
	case DriverSQLite:
		return "sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// gooseLogger adapts Logger to goose.Logger.
type gooseLogger struct {
	log logger.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
	os.Exit(1)
}
