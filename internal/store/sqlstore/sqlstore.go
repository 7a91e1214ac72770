// Package sqlstore implements store.Repository on database/sql. The SQL is
// written once with "?" placeholders; a Dialect adapts placeholder syntax,
// generated-id retrieval, row locking and driver error classification for
// each backend.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Dialect interface {
	Name() string
	// Rebind rewrites "?" placeholders into the backend's syntax.
	Rebind(query string) string
	// InsertID runs an INSERT and returns the generated id column.
	InsertID(ctx context.Context, q Querier, query string, args ...any) (int64, error)
	// LockSuffix is appended to single-row reads made inside a transaction.
	LockSuffix() string
	// Classify maps driver constraint errors onto store error kinds.
	Classify(err error) error
}

type Store struct {
	db      *sql.DB
	q       Querier
	dialect Dialect
	inTx    bool
}

var _ store.Repository = (*Store)(nil)

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, q: db, dialect: dialect}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(store.Repository) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	txStore := &Store{db: s.db, q: tx, dialect: s.dialect, inTx: true}
	if err := fn(txStore); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return s.dialect.Classify(err)
	}
	return nil
}

// Migrate executes a schema script statement by statement.
func (s *Store) Migrate(ctx context.Context, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name(), err)
		}
	}
	return nil
}

func (s *Store) EnsurePartners(ctx context.Context, names []string) error {
	for _, name := range names {
		if _, err := s.exec(ctx, `INSERT INTO partners (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := s.q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, s.dialect.Classify(err)
	}
	return res, nil
}

// execOne runs a statement that must touch exactly one row; notFound is
// returned when it touches none.
func (s *Store) execOne(ctx context.Context, notFound error, query string, args ...any) error {
	res, err := s.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}

func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	id, err := s.dialect.InsertID(ctx, s.q, s.dialect.Rebind(query), args...)
	if err != nil {
		return 0, s.dialect.Classify(err)
	}
	return id, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) forUpdate() string {
	if s.inTx {
		return s.dialect.LockSuffix()
	}
	return ""
}

func rangeFilter(column string, r store.Range) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if !r.From.IsZero() {
		clauses = append(clauses, column+" >= ?")
		args = append(args, r.From.String())
	}
	if !r.To.IsZero() {
		clauses = append(clauses, column+" <= ?")
		args = append(args, r.To.String())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func money(d decimal.Decimal) string {
	return domain.Money(d).String()
}

func nullMoney(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return money(*d)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullDate(val *domain.Date) any {
	if val == nil || val.IsZero() {
		return nil
	}
	return val.String()
}

func datePtr(d domain.Date) *domain.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}
