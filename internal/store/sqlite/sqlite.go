// Package sqlite is the embedded single-file backend. Use ":memory:" for a
// throwaway database; a single connection is kept open so the in-memory
// database lives as long as the store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-sqlite3"

	"orvann/backend/internal/store"
	"orvann/backend/internal/store/sqlstore"
)

const schema = `
CREATE TABLE IF NOT EXISTS partners (
	name TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS products (
	sku TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	size TEXT NOT NULL DEFAULT '',
	color TEXT NOT NULL DEFAULT '',
	cost NUMERIC NOT NULL CHECK (cost >= 0),
	sale_price NUMERIC NOT NULL CHECK (sale_price >= 0),
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	reorder_threshold INTEGER NOT NULL DEFAULT 3 CHECK (reorder_threshold >= 0),
	supplier TEXT,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sales (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_date TEXT NOT NULL,
	sale_time TEXT NOT NULL,
	sku TEXT NOT NULL REFERENCES products(sku),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC NOT NULL CHECK (unit_price >= 0),
	discount_pct NUMERIC NOT NULL DEFAULT 0 CHECK (discount_pct >= 0 AND discount_pct <= 100),
	total NUMERIC NOT NULL CHECK (total >= 0),
	payment_method TEXT NOT NULL CHECK (payment_method IN ('Cash', 'Transfer', 'Card', 'Credit')),
	customer TEXT,
	seller TEXT,
	notes TEXT,
	CHECK (payment_method <> 'Credit' OR COALESCE(customer, '') <> '')
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_sales_sku ON sales(sku);

CREATE TABLE IF NOT EXISTS credits (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sale_id INTEGER REFERENCES sales(id) ON DELETE CASCADE,
	customer TEXT NOT NULL,
	amount NUMERIC NOT NULL CHECK (amount > 0),
	amount_paid NUMERIC NOT NULL DEFAULT 0 CHECK (amount_paid >= 0 AND amount_paid <= amount),
	issue_date TEXT NOT NULL,
	payment_date TEXT,
	is_paid INTEGER NOT NULL DEFAULT 0,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_credits_sale ON credits(sale_id);

CREATE TABLE IF NOT EXISTS expenses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	expense_date TEXT NOT NULL,
	category TEXT NOT NULL,
	amount NUMERIC NOT NULL CHECK (amount > 0),
	description TEXT,
	payment_method TEXT CHECK (payment_method IS NULL OR payment_method IN ('Cash', 'Transfer', 'Card', 'Credit')),
	paid_by TEXT NOT NULL REFERENCES partners(name),
	is_investment INTEGER NOT NULL DEFAULT 0,
	notes TEXT,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(expense_date);

CREATE TABLE IF NOT EXISTS cash_drawers (
	drawer_date TEXT PRIMARY KEY,
	opening_cash NUMERIC NOT NULL DEFAULT 0 CHECK (opening_cash >= 0),
	closing_cash_actual NUMERIC,
	is_closed INTEGER NOT NULL DEFAULT 0,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS supplier_orders (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_date TEXT NOT NULL,
	supplier TEXT NOT NULL,
	description TEXT,
	units INTEGER NOT NULL CHECK (units > 0),
	unit_cost NUMERIC NOT NULL CHECK (unit_cost >= 0),
	total NUMERIC NOT NULL CHECK (total >= 0),
	status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Paid', 'Received')),
	paid_by TEXT,
	expected_date TEXT,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS fixed_costs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	concept TEXT NOT NULL,
	monthly_amount NUMERIC NOT NULL CHECK (monthly_amount > 0),
	is_active INTEGER NOT NULL DEFAULT 1,
	notes TEXT
)
`

type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) Rebind(query string) string { return query }

func (Dialect) LockSuffix() string { return "" }

func (Dialect) InsertID(ctx context.Context, q sqlstore.Querier, query string, args ...any) (int64, error) {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (Dialect) Classify(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %v", store.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%w: %v", store.ErrConstraintViolation, err)
	}
}

// New opens (creating if needed) the database at path and migrates it.
func New(ctx context.Context, path string) (*sqlstore.Store, error) {
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dsn += "&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := sqlstore.New(db, Dialect{})
	if err := s.Migrate(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}
