package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func (s *Store) GetCashDrawer(ctx context.Context, date domain.Date) (*domain.CashDrawer, error) {
	var (
		d      domain.CashDrawer
		actual decimal.NullDecimal
	)
	err := s.queryRow(ctx, `
		SELECT drawer_date, opening_cash, closing_cash_actual, is_closed, COALESCE(notes, '')
		FROM cash_drawers
		WHERE drawer_date = ?`+s.forUpdate(), date.String()).Scan(&d.Date, &d.OpeningCash, &actual, &d.IsClosed, &d.Notes)
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("cash drawer %s", date)
		}
		return nil, err
	}
	if actual.Valid {
		v := actual.Decimal
		d.ClosingCashActual = &v
	}
	return &d, nil
}

func (s *Store) UpsertCashDrawer(ctx context.Context, d domain.CashDrawer) error {
	_, err := s.exec(ctx, `
		INSERT INTO cash_drawers (drawer_date, opening_cash, closing_cash_actual, is_closed, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (drawer_date) DO UPDATE SET
			opening_cash = excluded.opening_cash,
			closing_cash_actual = excluded.closing_cash_actual,
			is_closed = excluded.is_closed,
			notes = excluded.notes
	`, d.Date.String(), money(d.OpeningCash), nullMoney(d.ClosingCashActual), d.IsClosed, nullIfEmpty(d.Notes))
	return err
}
