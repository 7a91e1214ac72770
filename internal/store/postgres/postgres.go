package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

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
	cost NUMERIC(14,2) NOT NULL CHECK (cost >= 0),
	sale_price NUMERIC(14,2) NOT NULL CHECK (sale_price >= 0),
	stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
	reorder_threshold INTEGER NOT NULL DEFAULT 3 CHECK (reorder_threshold >= 0),
	supplier TEXT,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sales (
	id BIGSERIAL PRIMARY KEY,
	sale_date DATE NOT NULL,
	sale_time TEXT NOT NULL,
	sku TEXT NOT NULL REFERENCES products(sku),
	quantity INTEGER NOT NULL CHECK (quantity > 0),
	unit_price NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0),
	discount_pct NUMERIC(5,2) NOT NULL DEFAULT 0 CHECK (discount_pct >= 0 AND discount_pct <= 100),
	total NUMERIC(14,2) NOT NULL CHECK (total >= 0),
	payment_method TEXT NOT NULL CHECK (payment_method IN ('Cash', 'Transfer', 'Card', 'Credit')),
	customer TEXT,
	seller TEXT,
	notes TEXT,
	CHECK (payment_method <> 'Credit' OR COALESCE(customer, '') <> '')
);

CREATE INDEX IF NOT EXISTS idx_sales_date ON sales(sale_date);
CREATE INDEX IF NOT EXISTS idx_sales_sku ON sales(sku);

CREATE TABLE IF NOT EXISTS credits (
	id BIGSERIAL PRIMARY KEY,
	sale_id BIGINT REFERENCES sales(id) ON DELETE CASCADE,
	customer TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	amount_paid NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (amount_paid >= 0 AND amount_paid <= amount),
	issue_date DATE NOT NULL,
	payment_date DATE,
	is_paid BOOLEAN NOT NULL DEFAULT false,
	notes TEXT
);

CREATE INDEX IF NOT EXISTS idx_credits_sale ON credits(sale_id);

CREATE TABLE IF NOT EXISTS expenses (
	id BIGSERIAL PRIMARY KEY,
	expense_date DATE NOT NULL,
	category TEXT NOT NULL,
	amount NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	description TEXT,
	payment_method TEXT CHECK (payment_method IS NULL OR payment_method IN ('Cash', 'Transfer', 'Card', 'Credit')),
	paid_by TEXT NOT NULL REFERENCES partners(name),
	is_investment BOOLEAN NOT NULL DEFAULT false,
	notes TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_expenses_date ON expenses(expense_date);

CREATE TABLE IF NOT EXISTS cash_drawers (
	drawer_date DATE PRIMARY KEY,
	opening_cash NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (opening_cash >= 0),
	closing_cash_actual NUMERIC(14,2),
	is_closed BOOLEAN NOT NULL DEFAULT false,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS supplier_orders (
	id BIGSERIAL PRIMARY KEY,
	order_date DATE NOT NULL,
	supplier TEXT NOT NULL,
	description TEXT,
	units INTEGER NOT NULL CHECK (units > 0),
	unit_cost NUMERIC(14,2) NOT NULL CHECK (unit_cost >= 0),
	total NUMERIC(14,2) NOT NULL CHECK (total >= 0),
	status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Paid', 'Received')),
	paid_by TEXT,
	expected_date DATE,
	notes TEXT
);

CREATE TABLE IF NOT EXISTS fixed_costs (
	id BIGSERIAL PRIMARY KEY,
	concept TEXT NOT NULL,
	monthly_amount NUMERIC(14,2) NOT NULL CHECK (monthly_amount > 0),
	is_active BOOLEAN NOT NULL DEFAULT true,
	notes TEXT
)
`

type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// Rebind turns "?" placeholders into $1, $2, ...
func (Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (Dialect) LockSuffix() string { return " FOR UPDATE" }

func (Dialect) InsertID(ctx context.Context, q sqlstore.Querier, query string, args ...any) (int64, error) {
	var id int64
	query = strings.TrimRight(strings.TrimSpace(query), ";") + " RETURNING id"
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (Dialect) Classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", store.ErrDuplicateKey, pgErr.Message)
	case "23502", "23503", "23514":
		return fmt.Errorf("%w: %s", store.ErrConstraintViolation, pgErr.Message)
	default:
		return err
	}
}

func New(ctx context.Context, databaseURL string) (*sqlstore.Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
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
