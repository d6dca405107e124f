package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rl1809/seckill/internal/core/domain"
	"github.com/rl1809/seckill/internal/port"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	mysqlErrDupEntry = 1062
)

// dialect holds what differs between the SQL backends. Queries use ? for
// placeholders on both.
type dialect struct {
	name        string
	isDuplicate func(error) bool
}

var (
	mysqlDialect = dialect{
		name: DriverMySQL,
		isDuplicate: func(err error) bool {
			var me *mysql.MySQLError
			return errors.As(err, &me) && me.Number == mysqlErrDupEntry
		},
	}
	sqliteDialect = dialect{
		name: DriverSQLite,
		isDuplicate: func(err error) bool {
			var se *sqlite.Error
			if !errors.As(err, &se) {
				return false
			}
			return se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
		},
	}
)

// SQLAdapter is the system of record for items and purchases.
type SQLAdapter struct {
	db      *sqlx.DB
	dialect dialect
}

func NewMySQLAdapter(db *sqlx.DB) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: mysqlDialect}
}

func NewSQLiteAdapter(db *sqlx.DB) *SQLAdapter {
	return &SQLAdapter{db: db, dialect: sqliteDialect}
}

// NewSQLAdapter picks the dialect from the driver name.
func NewSQLAdapter(db *sqlx.DB, driver string) (*SQLAdapter, error) {
	switch driver {
	case DriverMySQL:
		return NewMySQLAdapter(db), nil
	case DriverSQLite:
		return NewSQLiteAdapter(db), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// OpenDB opens and pings the database. SQLite is limited to one connection so
// writers queue in database/sql instead of failing with SQLITE_BUSY, and so an
// in-memory database is shared by every caller.
func OpenDB(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

type itemRow struct {
	ID                int64  `db:"id"`
	Name              string `db:"name"`
	RemainingQuantity int64  `db:"remaining_quantity"`
	StartTime         int64  `db:"start_time"`
	EndTime           int64  `db:"end_time"`
	CreatedAt         int64  `db:"created_at"`
}

func (r itemRow) toDomain() domain.Item {
	return domain.Item{
		ID:                r.ID,
		Name:              r.Name,
		RemainingQuantity: r.RemainingQuantity,
		StartTime:         time.UnixMilli(r.StartTime),
		EndTime:           time.UnixMilli(r.EndTime),
		CreatedAt:         time.UnixMilli(r.CreatedAt),
	}
}

type purchaseRow struct {
	ItemID     int64   `db:"item_id"`
	CustomerID string  `db:"customer_id"`
	CreatedAt  int64   `db:"created_at"`
	Item       itemRow `db:"item"`
}

const itemColumns = `id, name, remaining_quantity, start_time, end_time, created_at`

func (m *SQLAdapter) CreateItem(ctx context.Context, item domain.Item) (int64, error) {
	now := time.Now().UnixMilli()
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO items (name, remaining_quantity, start_time, end_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.Name, item.RemainingQuantity, item.StartTime.UnixMilli(), item.EndTime.UnixMilli(), now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("item id: %w", err)
	}
	return id, nil
}

func (m *SQLAdapter) GetItem(ctx context.Context, itemID int64) (*domain.Item, error) {
	var row itemRow
	err := m.db.GetContext(ctx, &row, `SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}

	item := row.toDomain()
	return &item, nil
}

func (m *SQLAdapter) ListItems(ctx context.Context, offset, limit int) ([]domain.Item, error) {
	var rows []itemRow
	err := m.db.SelectContext(ctx, &rows, `
		SELECT `+itemColumns+` FROM items
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}

	items := make([]domain.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toDomain())
	}
	return items, nil
}

// FindPurchase reads outside any transaction.
func (m *SQLAdapter) FindPurchase(ctx context.Context, itemID int64, customerID string) (*domain.PurchaseRecord, error) {
	return findPurchase(ctx, m.db, itemID, customerID)
}

func (m *SQLAdapter) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.PurchaseTx) error) error {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(ctx, &sqlTx{tx: tx, dialect: m.dialect}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (m *SQLAdapter) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

type sqlTx struct {
	tx      *sqlx.Tx
	dialect dialect
}

func (t *sqlTx) InsertPurchase(ctx context.Context, itemID int64, customerID string, now time.Time) (bool, error) {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchases (item_id, customer_id, created_at)
		VALUES (?, ?, ?)`,
		itemID, customerID, now.UnixMilli(),
	)
	if err != nil {
		if t.dialect.isDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert purchase: %w", err)
	}
	return true, nil
}

func (t *sqlTx) DecrementStock(ctx context.Context, itemID int64, now time.Time) (int64, error) {
	ms := now.UnixMilli()
	result, err := t.tx.ExecContext(ctx, `
		UPDATE items
		SET remaining_quantity = remaining_quantity - 1, updated_at = ?
		WHERE id = ? AND start_time <= ? AND end_time >= ? AND remaining_quantity > 0`,
		ms, itemID, ms, ms,
	)
	if err != nil {
		return 0, fmt.Errorf("update items: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return rows, nil
}

func (t *sqlTx) FindPurchase(ctx context.Context, itemID int64, customerID string) (*domain.PurchaseRecord, error) {
	return findPurchase(ctx, t.tx, itemID, customerID)
}

func findPurchase(ctx context.Context, q sqlx.QueryerContext, itemID int64, customerID string) (*domain.PurchaseRecord, error) {
	var row purchaseRow
	err := sqlx.GetContext(ctx, q, &row, `
		SELECT
			p.item_id, p.customer_id, p.created_at,
			i.id AS "item.id",
			i.name AS "item.name",
			i.remaining_quantity AS "item.remaining_quantity",
			i.start_time AS "item.start_time",
			i.end_time AS "item.end_time",
			i.created_at AS "item.created_at"
		FROM purchases p
		INNER JOIN items i ON i.id = p.item_id
		WHERE p.item_id = ? AND p.customer_id = ?`,
		itemID, customerID,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase: %w", err)
	}

	item := row.Item.toDomain()
	return &domain.PurchaseRecord{
		ItemID:     row.ItemID,
		CustomerID: row.CustomerID,
		CreatedAt:  time.UnixMilli(row.CreatedAt),
		Item:       &item,
	}, nil
}
