package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func TestDrawerOpenAndClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)
	today := domain.NewDate(2025, 3, 14)

	require.NoError(t, f.svc.OpenDrawer(ctx, domain.Date{}, dec("50000")))
	require.NoError(t, f.svc.OpenDrawer(ctx, today, dec("100000")), "opening again overwrites")

	_, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)
	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "HOOD-TEST-L", Quantity: 1, UnitPrice: dec("200000"), PaymentMethod: domain.PaymentCard})
	require.NoError(t, err)
	_, err = f.svc.RecordExpense(ctx, domain.ExpenseRequest{Category: "Servicios", Amount: dec("20000"), PaidBy: "JP", PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)
	_, err = f.svc.RecordExpense(ctx, domain.ExpenseRequest{Category: "Servicios", Amount: dec("90000"), PaidBy: "JP", PaymentMethod: domain.PaymentTransfer})
	require.NoError(t, err)

	state, err := f.svc.DrawerState(ctx, today)
	require.NoError(t, err)
	assert.True(t, state.IsOpen)
	assert.False(t, state.IsClosed)
	assert.True(t, state.OpeningCash.Equal(dec("100000")))
	assert.True(t, state.CashSales.Equal(dec("75000")))
	assert.True(t, state.CashExpenses.Equal(dec("20000")))
	assert.True(t, state.ExpectedCash.Equal(dec("155000")))
	assert.True(t, state.TotalsByMethod[domain.PaymentCard].Equal(dec("200000")))

	result, err := f.svc.CloseDrawer(ctx, today, dec("150000"), "faltante")
	require.NoError(t, err)
	assert.True(t, result.ExpectedCash.Equal(dec("155000")))
	assert.True(t, result.Difference.Equal(dec("-5000")))
	assert.False(t, result.Balanced())

	state, err = f.svc.DrawerState(ctx, today)
	require.NoError(t, err)
	assert.True(t, state.IsClosed)
	require.NotNil(t, state.ActualClose)
	assert.True(t, state.ActualClose.Equal(dec("150000")))
	assert.Equal(t, "faltante", state.Notes)

	require.NoError(t, f.svc.ReopenDrawer(ctx, today))
	state, err = f.svc.DrawerState(ctx, today)
	require.NoError(t, err)
	assert.False(t, state.IsClosed)
	assert.Nil(t, state.ActualClose)
	assert.True(t, state.OpeningCash.Equal(dec("100000")))
}

func TestCloseDrawerWithoutOpening(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	_, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	state, err := f.svc.DrawerState(ctx, domain.Date{})
	require.NoError(t, err)
	assert.False(t, state.IsOpen)
	assert.True(t, state.OpeningCash.IsZero())

	result, err := f.svc.CloseDrawer(ctx, domain.Date{}, dec("75000"), "")
	require.NoError(t, err)
	assert.True(t, result.Difference.IsZero())
	assert.True(t, result.Balanced())
}

func TestDrawerRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	assert.ErrorIs(t, f.svc.OpenDrawer(ctx, domain.Date{}, dec("-1")), store.ErrValidation)
	_, err := f.svc.CloseDrawer(ctx, domain.Date{}, dec("-1"), "")
	assert.ErrorIs(t, err, store.ErrValidation)
	assert.ErrorIs(t, f.svc.ReopenDrawer(ctx, domain.NewDate(2025, 1, 1)), store.ErrNotFound)
}
