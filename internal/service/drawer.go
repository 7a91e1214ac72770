package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

func (s *Service) DrawerState(ctx context.Context, date domain.Date) (domain.DrawerState, error) {
	return s.drawerState(ctx, s.repo, s.dateOrToday(date))
}

func (s *Service) drawerState(ctx context.Context, repo store.Repository, date domain.Date) (domain.DrawerState, error) {
	drawer, err := repo.GetCashDrawer(ctx, date)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.DrawerState{}, err
		}
		drawer = nil
	}

	day := store.Range{From: date, To: date}
	sales, err := repo.ListSales(ctx, day)
	if err != nil {
		return domain.DrawerState{}, err
	}
	expenses, err := repo.ListExpenses(ctx, day)
	if err != nil {
		return domain.DrawerState{}, err
	}
	return finance.DrawerState(date, drawer, sales, expenses), nil
}

// OpenDrawer sets the day's opening cash. Opening again overwrites it.
func (s *Service) OpenDrawer(ctx context.Context, date domain.Date, openingCash decimal.Decimal) (err error) {
	defer func() { s.record(ctx, "drawer_open", err) }()

	if openingCash.IsNegative() {
		return store.Invalid("opening_cash", "gte=0")
	}
	date = s.dateOrToday(date)

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		drawer, err := repo.GetCashDrawer(ctx, date)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			drawer = &domain.CashDrawer{Date: date}
		}
		drawer.OpeningCash = domain.Money(openingCash)
		return repo.UpsertCashDrawer(ctx, *drawer)
	})
}

// CloseDrawer records the counted cash and returns the difference against
// the expected amount. A day that was never opened closes with opening 0.
func (s *Service) CloseDrawer(ctx context.Context, date domain.Date, actualCash decimal.Decimal, notes string) (result domain.DrawerClose, err error) {
	defer func() { s.record(ctx, "drawer_close", err) }()

	if actualCash.IsNegative() {
		return domain.DrawerClose{}, store.Invalid("actual_cash", "gte=0")
	}
	date = s.dateOrToday(date)
	actual := domain.Money(actualCash)

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		state, err := s.drawerState(ctx, repo, date)
		if err != nil {
			return err
		}
		result = finance.CloseDrawer(state, actual)
		return repo.UpsertCashDrawer(ctx, domain.CashDrawer{
			Date:              date,
			OpeningCash:       state.OpeningCash,
			ClosingCashActual: &actual,
			IsClosed:          true,
			Notes:             notes,
		})
	})
	if err != nil {
		return domain.DrawerClose{}, err
	}
	return result, nil
}

// ReopenDrawer clears the close and keeps the opening cash.
func (s *Service) ReopenDrawer(ctx context.Context, date domain.Date) (err error) {
	defer func() { s.record(ctx, "drawer_reopen", err) }()
	date = s.dateOrToday(date)

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		drawer, err := repo.GetCashDrawer(ctx, date)
		if err != nil {
			return err
		}
		drawer.ClosingCashActual = nil
		drawer.IsClosed = false
		drawer.Notes = ""
		return repo.UpsertCashDrawer(ctx, *drawer)
	})
}
