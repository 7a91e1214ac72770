package finance

import (
	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
)

type BreakEvenInput struct {
	FixedCosts     []domain.FixedCost
	Products       []domain.Product
	MonthRevenue   decimal.Decimal
	MonthUnits     int
	Today          domain.Date
	FallbackTicket decimal.Decimal
}

// BreakEven computes the monthly break-even point from active fixed costs and
// a stock-weighted margin and ticket over the priced catalog.
func BreakEven(in BreakEvenInput) domain.BreakEven {
	fixed := decimal.Zero
	for _, c := range in.FixedCosts {
		if c.IsActive {
			fixed = fixed.Add(c.MonthlyAmount)
		}
	}

	margin, ticket := weightedMarginAndTicket(in.Products, in.FallbackTicket)

	revenue := decimal.Zero
	if margin.IsPositive() {
		revenue = fixed.Div(margin)
	}
	units := decimal.Zero
	if ticket.IsPositive() {
		units = revenue.Div(ticket)
	}

	progress := decimal.Zero
	if revenue.IsPositive() {
		progress = in.MonthRevenue.Div(revenue).Mul(hundred)
	}

	short := units.Sub(decimal.NewFromInt(int64(in.MonthUnits)))
	if short.IsNegative() {
		short = decimal.Zero
	}

	return domain.BreakEven{
		FixedCosts:         fixed,
		AverageMargin:      margin,
		AverageTicket:      ticket,
		BreakEvenRevenue:   revenue,
		BreakEvenUnits:     units,
		DailyTarget:        units.Div(decimal.NewFromInt(DaysPerMonth)),
		AccumulatedRevenue: in.MonthRevenue,
		UnitsSold:          in.MonthUnits,
		ProgressPct:        progress,
		DaysRemaining:      max(1, DaysPerMonth-in.Today.Day()),
		UnitsShort:         short,
	}
}

// weightedMarginAndTicket prefers priced products with stock on hand and
// falls back to every priced product when none has stock.
func weightedMarginAndTicket(products []domain.Product, fallbackTicket decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	var priced, stocked []domain.Product
	for _, p := range products {
		if !p.SalePrice.IsPositive() {
			continue
		}
		priced = append(priced, p)
		if p.Stock > 0 {
			stocked = append(stocked, p)
		}
	}
	eligible := stocked
	if len(eligible) == 0 {
		eligible = priced
	}
	if len(eligible) == 0 {
		return DefaultMargin, fallbackTicket
	}

	var (
		weightSum = decimal.Zero
		marginSum = decimal.Zero
		priceSum  = decimal.Zero
	)
	for _, p := range eligible {
		w := decimal.NewFromInt(int64(max(p.Stock, 1)))
		m := p.SalePrice.Sub(p.Cost).Div(p.SalePrice)
		weightSum = weightSum.Add(w)
		marginSum = marginSum.Add(m.Mul(w))
		priceSum = priceSum.Add(p.SalePrice.Mul(w))
	}
	return marginSum.Div(weightSum), priceSum.Div(weightSum)
}
