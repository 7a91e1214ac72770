//go:build integration

package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
	"orvann/backend/internal/store/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	ctx := context.Background()

	databaseURL := os.Getenv("ORVANN_TEST_DATABASE_URL")
	if databaseURL == "" {
		pgC, err := tcPostgres.RunContainer(ctx,
			testcontainers.WithImage("postgres:16-alpine"),
			tcPostgres.WithDatabase("orvann_test"),
			tcPostgres.WithUsername("orvann"),
			tcPostgres.WithPassword("orvann"),
			testcontainers.WithWaitStrategy(
				tcPostgres.BasicWaitStrategies()...,
			),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = pgC.Terminate(ctx) })

		databaseURL, err = pgC.ConnectionString(ctx, "sslmode=disable")
		require.NoError(t, err)
	}

	s, err := New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	for _, table := range []string{"credits", "sales", "expenses", "cash_drawers", "supplier_orders", "fixed_costs", "products"} {
		_, err := s.DB().ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	require.NoError(t, s.EnsurePartners(ctx, []string{"JP", "KATHE", "ANDRES"}))
	return s
}

func seedProduct(t *testing.T, s *sqlstore.Store, sku string, stock int) {
	t.Helper()
	require.NoError(t, s.CreateProduct(context.Background(), domain.Product{
		SKU:              sku,
		Name:             "Camiseta " + sku,
		Category:         "Camisetas",
		Cost:             decimal.NewFromInt(37000),
		SalePrice:        decimal.NewFromInt(75000),
		Stock:            stock,
		ReorderThreshold: 3,
	}))
}

func TestRebindNumbersPlaceholders(t *testing.T) {
	got := Dialect{}.Rebind(`UPDATE products SET stock = stock - ? WHERE sku = ? AND stock >= ?`)
	assert.Equal(t, `UPDATE products SET stock = stock - $1 WHERE sku = $2 AND stock >= $3`, got)
}

func TestSaleAndCreditRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProduct(t, s, "CAM-TEST-S", 10)

	today := domain.NewDate(2025, 3, 14)
	var saleID int64
	err := s.WithTx(ctx, func(repo store.Repository) error {
		if err := repo.DecreaseStock(ctx, "CAM-TEST-S", 2); err != nil {
			return err
		}
		id, err := repo.CreateSale(ctx, domain.Sale{
			Date:          today,
			Time:          "10:30:00",
			SKU:           "CAM-TEST-S",
			Quantity:      2,
			UnitPrice:     decimal.NewFromInt(75000),
			DiscountPct:   decimal.NewFromInt(10),
			Total:         decimal.NewFromInt(135000),
			PaymentMethod: domain.PaymentCredit,
			Customer:      "Cliente Test",
		})
		if err != nil {
			return err
		}
		saleID = id
		_, err = repo.CreateCredit(ctx, domain.Credit{
			SaleID:    &id,
			Customer:  "Cliente Test",
			Amount:    decimal.NewFromInt(135000),
			IssueDate: today,
		})
		return err
	})
	require.NoError(t, err)

	sale, err := s.GetSale(ctx, saleID)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(135000)))
	assert.Equal(t, today, sale.Date)

	credits, err := s.ListCredits(ctx, true)
	require.NoError(t, err)
	require.Len(t, credits, 1)
	assert.Equal(t, "CAM-TEST-S", credits[0].SKU)

	product, err := s.GetProduct(ctx, "CAM-TEST-S")
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)
}

func TestFailedTransactionRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProduct(t, s, "CAM-TEST-S", 10)

	sentinel := errors.New("abort")
	err := s.WithTx(ctx, func(repo store.Repository) error {
		if err := repo.IncreaseStock(ctx, "CAM-TEST-S", 5); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	product, err := s.GetProduct(ctx, "CAM-TEST-S")
	require.NoError(t, err)
	assert.Equal(t, 10, product.Stock)
}

func TestConstraintErrorsAreClassified(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedProduct(t, s, "CAM-TEST-S", 1)

	err := s.CreateProduct(ctx, domain.Product{SKU: "CAM-TEST-S", Name: "dup", Cost: decimal.Zero, SalePrice: decimal.Zero})
	require.ErrorIs(t, err, store.ErrDuplicateKey)

	_, err = s.CreateExpense(ctx, domain.Expense{
		Date:     domain.NewDate(2025, 3, 14),
		Category: "Arriendo",
		Amount:   decimal.NewFromInt(1000),
		PaidBy:   "NOBODY",
	})
	require.ErrorIs(t, err, store.ErrConstraintViolation)

	var stockErr *store.StockError
	err = s.DecreaseStock(ctx, "CAM-TEST-S", 2)
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
}

func TestTransitionOrderRejectsWrongState(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateOrder(ctx, domain.SupplierOrder{
		OrderDate: domain.NewDate(2025, 3, 1),
		Supplier:  "Proveedor",
		Units:     10,
		UnitCost:  decimal.NewFromInt(30000),
		Total:     decimal.NewFromInt(300000),
	})
	require.NoError(t, err)

	require.NoError(t, s.TransitionOrder(ctx, id, domain.OrderPending, domain.OrderPaid, "JP"))
	err = s.TransitionOrder(ctx, id, domain.OrderPending, domain.OrderPaid, "JP")
	require.ErrorIs(t, err, store.ErrInvalidState)

	order, err := s.GetOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, order.Status)
	assert.Equal(t, "JP", order.PaidBy)
}
