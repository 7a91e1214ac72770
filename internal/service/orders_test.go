package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func createOrder(t *testing.T, f *fixture) int64 {
	t.Helper()
	id, err := f.svc.CreateOrder(context.Background(), domain.OrderCreateRequest{
		Supplier:    "Textiles SAS",
		Description: "Camisetas basicas",
		Units:       10,
		UnitCost:    dec("50000"),
	})
	require.NoError(t, err)
	return id
}

func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)
	id := createOrder(t, f)

	order, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("500000")))
	assert.Equal(t, domain.OrderPending, order.Status)

	debt, err := f.svc.SupplierDebt(ctx)
	require.NoError(t, err)
	assert.True(t, debt.Equal(dec("500000")))

	err = f.svc.ReceiveOrder(ctx, id, domain.OrderReceiveRequest{Items: []domain.StockReceipt{{SKU: "CAM-TEST-S", Quantity: 10}}})
	assert.ErrorIs(t, err, store.ErrInvalidState, "pending orders cannot be received")

	expenseID, err := f.svc.PayOrder(ctx, id, domain.OrderPayRequest{PaidBy: "KATHE"})
	require.NoError(t, err)

	expense, err := f.svc.GetExpense(ctx, expenseID)
	require.NoError(t, err)
	assert.Equal(t, "Merchandise", expense.Category)
	assert.True(t, expense.Amount.Equal(dec("500000")))
	assert.Equal(t, "KATHE", expense.PaidBy)
	assert.Equal(t, domain.PaymentTransfer, expense.PaymentMethod)
	assert.Contains(t, expense.Description, "Textiles SAS")

	_, err = f.svc.PayOrder(ctx, id, domain.OrderPayRequest{PaidBy: "KATHE"})
	assert.ErrorIs(t, err, store.ErrInvalidState)

	debt, err = f.svc.SupplierDebt(ctx)
	require.NoError(t, err)
	assert.True(t, debt.IsZero())

	err = f.svc.ReceiveOrder(ctx, id, domain.OrderReceiveRequest{Items: []domain.StockReceipt{
		{SKU: "CAM-TEST-S", Quantity: 6},
		{SKU: "NO-STOCK", Quantity: 4},
	}})
	require.NoError(t, err)
	assert.Equal(t, 16, f.stock(t, "CAM-TEST-S"))
	assert.Equal(t, 4, f.stock(t, "NO-STOCK"))

	order, err = f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderReceived, order.Status)
	assert.Equal(t, "KATHE", order.PaidBy)

	err = f.svc.ReceiveOrder(ctx, id, domain.OrderReceiveRequest{})
	assert.ErrorIs(t, err, store.ErrInvalidState)
}

func TestReceiveOrderWithUnknownSKURollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)
	id := createOrder(t, f)

	_, err := f.svc.PayOrder(ctx, id, domain.OrderPayRequest{PaidBy: "JP"})
	require.NoError(t, err)

	err = f.svc.ReceiveOrder(ctx, id, domain.OrderReceiveRequest{Items: []domain.StockReceipt{
		{SKU: "CAM-TEST-S", Quantity: 5},
		{SKU: "DOES-NOT-EXIST", Quantity: 1},
	}})
	require.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, 10, f.stock(t, "CAM-TEST-S"))
	order, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, order.Status)
}

func TestPayOrderWithUnknownPartnerLeavesOrderPending(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := createOrder(t, f)

	_, err := f.svc.PayOrder(ctx, id, domain.OrderPayRequest{PaidBy: "NOBODY"})
	require.ErrorIs(t, err, store.ErrValidation)

	_, err = f.svc.PayOrder(ctx, 404, domain.OrderPayRequest{PaidBy: "JP"})
	require.ErrorIs(t, err, store.ErrNotFound)

	order, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, order.Status)

	summary, err := f.svc.ExpensesRange(ctx, domain.Date{}, domain.Date{})
	require.NoError(t, err)
	assert.Empty(t, summary.Expenses)
}

func TestReceiveWithNoItemsIsAllowed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := createOrder(t, f)

	_, err := f.svc.PayOrder(ctx, id, domain.OrderPayRequest{PaidBy: "ANDRES"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ReceiveOrder(ctx, id, domain.OrderReceiveRequest{}))
}

func TestEditOrderRecomputesTotalAndKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	id := createOrder(t, f)

	units := 12
	require.NoError(t, f.svc.EditOrder(ctx, id, domain.OrderEditRequest{Units: &units}))
	order, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("600000")))

	cost := dec("45000")
	require.NoError(t, f.svc.EditOrder(ctx, id, domain.OrderEditRequest{UnitCost: &cost}))
	order, err = f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(dec("540000")))
	assert.Equal(t, domain.OrderPending, order.Status)

	zero := 0
	assert.ErrorIs(t, f.svc.EditOrder(ctx, id, domain.OrderEditRequest{Units: &zero}), store.ErrValidation)

	pending, err := f.svc.Orders(ctx, domain.OrderPending)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, f.svc.DeleteOrder(ctx, id))
	_, err = f.svc.GetOrder(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateOrderTotalsRoundedUnitCost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	id, err := f.svc.CreateOrder(ctx, domain.OrderCreateRequest{Supplier: "Textiles SAS", Units: 3, UnitCost: dec("50000.555")})
	require.NoError(t, err)

	order, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.True(t, order.UnitCost.Equal(dec("50000.56")), order.UnitCost.String())
	assert.True(t, order.Total.Equal(order.UnitCost.Mul(dec("3"))), order.Total.String())
}
