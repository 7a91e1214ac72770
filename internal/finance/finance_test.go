package finance

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orvann/backend/internal/domain"
)

var partners = []string{"JP", "KATHE", "ANDRES"}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSaleTotal(t *testing.T) {
	cases := []struct {
		price    string
		qty      int
		discount string
		want     string
	}{
		{"75000", 2, "0", "150000"},
		{"75000", 2, "10", "135000"},
		{"200000", 1, "100", "0"},
		{"19999.99", 3, "12.5", "52499.97"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%sx%d-%s", tc.price, tc.qty, tc.discount), func(t *testing.T) {
			got := SaleTotal(dec(tc.price), tc.qty, dec(tc.discount))
			assert.True(t, got.Equal(dec(tc.want)), "got %s", got)
		})
	}
}

func TestSplitEvenConservesTotal(t *testing.T) {
	shares, err := SplitEven(dec("100000"), partners)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	assert.True(t, shares[0].Amount.Equal(dec("33333")))
	assert.True(t, shares[1].Amount.Equal(dec("33333")))
	assert.True(t, shares[2].Amount.Equal(dec("33334")))
	assert.Equal(t, "ANDRES", shares[2].Partner)

	for _, raw := range []string{"3", "10", "99999", "100001", "1914900", "250.75"} {
		total := dec(raw)
		shares, err := SplitEven(total, partners)
		require.NoError(t, err, raw)
		sum := decimal.Zero
		for _, s := range shares {
			assert.True(t, s.Amount.IsPositive(), raw)
			sum = sum.Add(s.Amount)
		}
		assert.True(t, sum.Equal(total), "%s split to %s", raw, sum)
	}
}

func TestSplitEvenRejectsTinyTotals(t *testing.T) {
	for _, raw := range []string{"1", "2", "0.5"} {
		_, err := SplitEven(dec(raw), partners)
		assert.ErrorIs(t, err, ErrShareTooSmall, raw)
	}
}

func TestSplitCustomSkipsNonPositive(t *testing.T) {
	shares := SplitCustom(map[string]decimal.Decimal{
		"JP":     dec("50000"),
		"KATHE":  decimal.Zero,
		"ANDRES": dec("-10"),
	}, partners)
	require.Len(t, shares, 1)
	assert.Equal(t, "JP", shares[0].Partner)
}

func TestSettleClosesToZero(t *testing.T) {
	expenses := []domain.Expense{
		{Category: "Arriendo", Amount: dec("1210000"), PaidBy: "JP"},
		{Category: "Servicios", Amount: dec("69000"), PaidBy: "KATHE"},
		{Category: "Servicios", Amount: dec("153000"), PaidBy: "KATHE"},
		{Category: "Merchandise", Amount: dec("500000"), PaidBy: "ANDRES"},
		{Category: "Transporte", Amount: dec("0.01"), PaidBy: "JP"},
	}
	s := Settle(expenses, partners)

	assert.True(t, s.TotalSpent.Equal(dec("1932000.01")))
	require.Len(t, s.Partners, 3)
	sum := decimal.Zero
	shares := decimal.Zero
	for _, p := range s.Partners {
		sum = sum.Add(p.Balance)
		shares = shares.Add(p.Share)
	}
	assert.True(t, sum.IsZero(), "balances sum to %s", sum)
	assert.True(t, shares.Equal(s.TotalSpent))
	assert.True(t, s.Share.Mul(dec("3")).Round(2).Equal(s.TotalSpent), s.Share.String())
	assert.True(t, s.Share.GreaterThan(dec("644000.003")), "share is not rounded to cents")
	assert.True(t, s.ByCategory["Servicios"].Equal(dec("222000")))
	assert.True(t, s.ByPartnerCategory["KATHE"]["Servicios"].Equal(dec("222000")))
	assert.True(t, s.Partners[0].Balance.IsPositive())
}

func TestSettleReportsExactShare(t *testing.T) {
	expenses := []domain.Expense{
		{Category: "Arriendo", Amount: dec("100"), PaidBy: "JP"},
	}
	s := Settle(expenses, partners)

	assert.True(t, s.Share.Equal(dec("100").Div(dec("3"))), s.Share.String())
	assert.True(t, s.Partners[0].Share.Equal(dec("33.33")))
	assert.True(t, s.Partners[1].Share.Equal(dec("33.33")))
	assert.True(t, s.Partners[2].Share.Equal(dec("33.34")))
}

func TestSettleWithoutExpenses(t *testing.T) {
	s := Settle(nil, partners)
	assert.True(t, s.TotalSpent.IsZero())
	assert.True(t, s.Share.IsZero())
	require.Len(t, s.Partners, 3)
	for _, p := range s.Partners {
		assert.True(t, p.Balance.IsZero())
	}
}

func breakEvenFixture() BreakEvenInput {
	costs := []domain.FixedCost{}
	for _, amount := range []int64{1210000, 250000, 69000, 153000, 80000, 152900} {
		costs = append(costs, domain.FixedCost{MonthlyAmount: decimal.NewFromInt(amount), IsActive: true})
	}
	costs = append(costs, domain.FixedCost{MonthlyAmount: decimal.NewFromInt(999999), IsActive: false})
	return BreakEvenInput{
		FixedCosts: costs,
		Products: []domain.Product{
			{SKU: "CAM-TEST-S", Cost: dec("37000"), SalePrice: dec("75000"), Stock: 10},
			{SKU: "HOOD-TEST-L", Cost: dec("120000"), SalePrice: dec("200000"), Stock: 5},
			{SKU: "FREE", Cost: dec("1000"), SalePrice: decimal.Zero, Stock: 50},
		},
		Today:          domain.NewDate(2025, 3, 14),
		FallbackTicket: dec("100000"),
	}
}

func TestBreakEvenWeightsByStock(t *testing.T) {
	be := BreakEven(breakEvenFixture())

	assert.True(t, be.FixedCosts.Equal(dec("1914900")))
	margin, _ := be.AverageMargin.Float64()
	assert.InDelta(t, 0.4711, margin, 0.001)
	assert.True(t, be.AverageMargin.GreaterThan(dec("0.4")))
	assert.True(t, be.AverageMargin.LessThan(dec("0.5")))

	ticket, _ := be.AverageTicket.Float64()
	assert.InDelta(t, 116666.67, ticket, 0.01)
	assert.Equal(t, 16, be.DaysRemaining)
	assert.True(t, be.ProgressPct.IsZero())
	assert.True(t, be.UnitsShort.Equal(be.BreakEvenUnits))
}

func TestBreakEvenProgressIsNotClamped(t *testing.T) {
	in := breakEvenFixture()
	in.MonthRevenue = dec("100000000")
	in.MonthUnits = 1000
	in.Today = domain.NewDate(2025, 3, 31)

	be := BreakEven(in)
	assert.True(t, be.ProgressPct.GreaterThan(hundred))
	assert.True(t, be.DisplayProgress().Equal(hundred))
	assert.True(t, be.UnitsShort.IsZero())
	assert.Equal(t, 1, be.DaysRemaining)
}

func TestBreakEvenFallbacks(t *testing.T) {
	be := BreakEven(BreakEvenInput{FallbackTicket: dec("100000"), Today: domain.NewDate(2025, 3, 1)})
	assert.True(t, be.AverageMargin.Equal(DefaultMargin))
	assert.True(t, be.AverageTicket.Equal(dec("100000")))
	assert.True(t, be.BreakEvenRevenue.IsZero())

	// Out-of-stock products still count when nothing has stock.
	be = BreakEven(BreakEvenInput{
		Products: []domain.Product{{Cost: dec("50"), SalePrice: dec("100"), Stock: 0}},
		Today:    domain.NewDate(2025, 3, 1),
	})
	assert.True(t, be.AverageMargin.Equal(dec("0.5")))
	assert.True(t, be.AverageTicket.Equal(dec("100")))
}

func TestDrawerStateExpectedCash(t *testing.T) {
	day := domain.NewDate(2025, 3, 14)
	sales := []domain.SaleLine{
		{Sale: domain.Sale{Total: dec("150000"), PaymentMethod: domain.PaymentCash}},
		{Sale: domain.Sale{Total: dec("75000"), PaymentMethod: domain.PaymentTransfer}},
		{Sale: domain.Sale{Total: dec("50000"), PaymentMethod: domain.PaymentCash}},
	}
	expenses := []domain.Expense{
		{Amount: dec("20000"), PaymentMethod: domain.PaymentCash},
		{Amount: dec("90000"), PaymentMethod: domain.PaymentTransfer},
	}

	closed := DrawerState(day, nil, sales, expenses)
	assert.False(t, closed.IsOpen)
	assert.True(t, closed.ExpectedCash.Equal(dec("180000")))

	state := DrawerState(day, &domain.CashDrawer{Date: day, OpeningCash: dec("100000")}, sales, expenses)
	assert.True(t, state.IsOpen)
	assert.True(t, state.CashSales.Equal(dec("200000")))
	assert.True(t, state.CashExpenses.Equal(dec("20000")))
	assert.True(t, state.ExpectedCash.Equal(dec("280000")))
	assert.True(t, state.TotalsByMethod[domain.PaymentTransfer].Equal(dec("75000")))

	result := CloseDrawer(state, dec("279500.50"))
	assert.True(t, result.Difference.Equal(dec("-499.5")))
	assert.False(t, result.Balanced())
	assert.True(t, CloseDrawer(state, dec("280000.50")).Balanced())
}

func TestApplyPaymentAmortizes(t *testing.T) {
	today := domain.NewDate(2025, 3, 14)
	credit := domain.Credit{ID: 7, Amount: dec("200000"), AmountPaid: decimal.Zero}

	credit, first := ApplyPayment(credit, dec("100000"), today)
	assert.False(t, first.Completed)
	assert.True(t, first.RemainingBalance.Equal(dec("100000")))
	assert.False(t, credit.IsPaid)

	credit, second := ApplyPayment(credit, dec("150000"), today)
	assert.True(t, second.Completed)
	assert.True(t, second.RemainingBalance.IsZero())
	assert.True(t, second.AmountPaidTotal.Equal(dec("200000")))
	assert.True(t, credit.IsPaid)
	assert.True(t, credit.AmountPaid.Equal(credit.Amount))
	require.NotNil(t, credit.PaymentDate)
	assert.Equal(t, today, *credit.PaymentDate)
}
