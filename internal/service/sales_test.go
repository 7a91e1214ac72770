package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

func TestRecordAndVoidSaleRestoresStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 2, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, 8, f.stock(t, "CAM-TEST-S"))

	sale, err := f.svc.GetSale(ctx, id)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("150000")))
	assert.Equal(t, domain.NewDate(2025, 3, 14), sale.Date)
	assert.Equal(t, "10:30:00", sale.Time)

	voided, err := f.svc.VoidSale(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, voided.ID)
	assert.Equal(t, 10, f.stock(t, "CAM-TEST-S"))

	_, err = f.svc.GetSale(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.VoidSale(ctx, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, 10, f.stock(t, "CAM-TEST-S"), "second void must not restock again")
}

func TestRecordSaleAppliesDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "hood-test-l", Quantity: 2, UnitPrice: dec("200000"), DiscountPct: dec("15"), PaymentMethod: domain.PaymentCard, Seller: "JP"})
	require.NoError(t, err)

	sale, err := f.svc.GetSale(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "HOOD-TEST-L", sale.SKU)
	assert.True(t, sale.Total.Equal(dec("340000")), sale.Total.String())
}

func TestRecordSaleFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	_, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "MISSING", Quantity: 1, UnitPrice: dec("1000"), PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "LOW-STOCK", Quantity: 3, UnitPrice: dec("35000"), PaymentMethod: domain.PaymentCash})
	var stockErr *store.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, f.stock(t, "LOW-STOCK"))

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCredit, Customer: "  "})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), DiscountPct: dec("120"), PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 0, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCash})
	assert.ErrorIs(t, err, store.ErrValidation)

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: "Bitcoin"})
	var fieldErr *store.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "payment_method", fieldErr.Field)

	_, err = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), DiscountPct: dec("100"), PaymentMethod: domain.PaymentCredit, Customer: "Ana"})
	assert.ErrorIs(t, err, store.ErrValidation)

	assert.Equal(t, 10, f.stock(t, "CAM-TEST-S"))
}

func TestCreditSaleOpensCreditAndVoidDropsIt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCredit, Customer: "Cliente Test"})
	require.NoError(t, err)

	pending, err := f.svc.PendingCredits(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Cliente Test", pending[0].Customer)
	assert.True(t, pending[0].Amount.Equal(dec("75000")))
	assert.True(t, pending[0].AmountPaid.IsZero())
	require.NotNil(t, pending[0].SaleID)
	assert.Equal(t, id, *pending[0].SaleID)
	assert.Equal(t, "Camiseta Test", pending[0].ProductName)

	_, err = f.svc.VoidSale(ctx, id)
	require.NoError(t, err)

	all, err := f.svc.Credits(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestEditSaleRecomputesTotalWithExistingDiscount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 2, UnitPrice: dec("75000"), DiscountPct: dec("10"), PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	price := dec("80000")
	method := domain.PaymentTransfer
	notes := "precio corregido"
	require.NoError(t, f.svc.EditSale(ctx, id, domain.SaleEditRequest{UnitPrice: &price, PaymentMethod: &method, Notes: &notes}))

	sale, err := f.svc.GetSale(ctx, id)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(dec("144000")), sale.Total.String())
	assert.Equal(t, domain.PaymentTransfer, sale.PaymentMethod)
	assert.Equal(t, "precio corregido", sale.Notes)
	assert.Equal(t, 2, sale.Quantity)
	assert.Equal(t, 8, f.stock(t, "CAM-TEST-S"))

	require.NoError(t, f.svc.EditSale(ctx, 9999, domain.SaleEditRequest{}), "empty edit is a no-op")
	assert.ErrorIs(t, f.svc.EditSale(ctx, 9999, domain.SaleEditRequest{Notes: &notes}), store.ErrNotFound)
}

func TestStockNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	for i := 0; i < 5; i++ {
		_, _ = f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "LOW-STOCK", Quantity: 1, UnitPrice: dec("35000"), PaymentMethod: domain.PaymentCash})
	}
	assert.Equal(t, 0, f.stock(t, "LOW-STOCK"))

	daily, err := f.svc.DailySales(ctx, domain.Date{})
	require.NoError(t, err)
	assert.Equal(t, 2, daily.Units)
}

func TestStoredSaleTotalMatchesStoredInputs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("100000.004"), DiscountPct: dec("33.333"), PaymentMethod: domain.PaymentCash})
	require.NoError(t, err)

	sale, err := f.svc.GetSale(ctx, id)
	require.NoError(t, err)
	assert.True(t, sale.UnitPrice.Equal(dec("100000")), sale.UnitPrice.String())
	assert.True(t, sale.DiscountPct.Equal(dec("33.33")), sale.DiscountPct.String())
	assert.True(t, sale.Total.Equal(finance.SaleTotal(sale.UnitPrice, sale.Quantity, sale.DiscountPct)), sale.Total.String())
	assert.True(t, sale.Total.Equal(dec("66670")), sale.Total.String())

	same := sale.UnitPrice
	require.NoError(t, f.svc.EditSale(ctx, id, domain.SaleEditRequest{UnitPrice: &same}))
	edited, err := f.svc.GetSale(ctx, id)
	require.NoError(t, err)
	assert.True(t, edited.Total.Equal(sale.Total), "re-saving the same price keeps the total")
}

func TestEditCreditSaleFollowsReceivable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)
	creditID := openCredit(t, f, "Ana")

	credit, err := f.svc.GetCredit(ctx, creditID)
	require.NoError(t, err)
	require.NotNil(t, credit.SaleID)
	saleID := *credit.SaleID

	_, err = f.svc.PayCreditPartial(ctx, creditID, dec("50000"))
	require.NoError(t, err)

	price := dec("150000")
	require.NoError(t, f.svc.EditSale(ctx, saleID, domain.SaleEditRequest{UnitPrice: &price}))
	credit, err = f.svc.GetCredit(ctx, creditID)
	require.NoError(t, err)
	assert.True(t, credit.Amount.Equal(dec("150000")), credit.Amount.String())
	assert.False(t, credit.IsPaid)

	tooLow := dec("40000")
	err = f.svc.EditSale(ctx, saleID, domain.SaleEditRequest{UnitPrice: &tooLow})
	assert.ErrorIs(t, err, store.ErrValidation)

	cash := domain.PaymentCash
	err = f.svc.EditSale(ctx, saleID, domain.SaleEditRequest{PaymentMethod: &cash})
	assert.ErrorIs(t, err, store.ErrValidation)

	paidOff := dec("50000")
	require.NoError(t, f.svc.EditSale(ctx, saleID, domain.SaleEditRequest{UnitPrice: &paidOff}))
	credit, err = f.svc.GetCredit(ctx, creditID)
	require.NoError(t, err)
	assert.True(t, credit.IsPaid)
	require.NotNil(t, credit.PaymentDate)
	assert.Equal(t, domain.NewDate(2025, 3, 14), *credit.PaymentDate)

	sale, err := f.svc.GetSale(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCredit, sale.PaymentMethod)
	assert.True(t, sale.Total.Equal(credit.Amount))
}

func TestEditSaleRefusesMovingIntoCredit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedCatalog(t)

	id, err := f.svc.RecordSale(ctx, domain.SaleRequest{SKU: "CAM-TEST-S", Quantity: 1, UnitPrice: dec("75000"), PaymentMethod: domain.PaymentCash, Customer: "Ana"})
	require.NoError(t, err)

	credit := domain.PaymentCredit
	err = f.svc.EditSale(ctx, id, domain.SaleEditRequest{PaymentMethod: &credit})
	assert.ErrorIs(t, err, store.ErrValidation)

	credits, err := f.svc.Credits(ctx)
	require.NoError(t, err)
	assert.Empty(t, credits)
}
