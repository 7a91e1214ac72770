// Package finance holds the ledger arithmetic: sale totals, expense splits,
// partner settlement, break-even, cash expectation, credit amortization and
// the sales/inventory/expense rollups. Nothing here touches storage, so both
// backends derive identical figures from the same rows.
package finance

import (
	"errors"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
)

// DaysPerMonth is the fixed month length used for daily targets.
const DaysPerMonth = 30

var (
	hundred = decimal.NewFromInt(100)

	DefaultMargin = decimal.RequireFromString("0.5")

	ErrShareTooSmall = errors.New("amount too small to split between partners")
)

// SaleTotal returns unitPrice * quantity * (1 - discountPct/100) at money
// precision.
func SaleTotal(unitPrice decimal.Decimal, quantity int, discountPct decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return domain.Money(gross.Mul(factor))
}

type Share struct {
	Partner string
	Amount  decimal.Decimal
}

// SplitEven divides total into whole-unit shares, one per partner. The last
// partner takes the remainder so the shares always sum to total.
func SplitEven(total decimal.Decimal, partners []string) ([]Share, error) {
	n := len(partners)
	if n == 0 {
		return nil, errors.New("no partners configured")
	}

	share := total.Div(decimal.NewFromInt(int64(n))).RoundBank(0)
	last := total.Sub(share.Mul(decimal.NewFromInt(int64(n - 1))))
	if !share.IsPositive() || !last.IsPositive() {
		return nil, ErrShareTooSmall
	}

	shares := make([]Share, 0, n)
	for i, partner := range partners {
		amount := share
		if i == n-1 {
			amount = last
		}
		shares = append(shares, Share{Partner: partner, Amount: amount})
	}
	return shares, nil
}

// SplitCustom keeps the positive amounts in partner order.
func SplitCustom(amounts map[string]decimal.Decimal, partners []string) []Share {
	shares := make([]Share, 0, len(partners))
	for _, partner := range partners {
		amount, ok := amounts[partner]
		if !ok || !amount.IsPositive() {
			continue
		}
		shares = append(shares, Share{Partner: partner, Amount: amount})
	}
	return shares
}

// Settle reconciles what each partner paid in against an equal share of
// all expenses. Shares are apportioned like SplitEven at cent precision, so
// balances always sum to exactly zero.
func Settle(expenses []domain.Expense, partners []string) domain.Settlement {
	paidIn := make(map[string]decimal.Decimal, len(partners))
	byPartnerCategory := make(map[string]map[string]decimal.Decimal, len(partners))
	for _, partner := range partners {
		paidIn[partner] = decimal.Zero
		byPartnerCategory[partner] = map[string]decimal.Decimal{}
	}

	total := decimal.Zero
	byCategory := map[string]decimal.Decimal{}
	for _, e := range expenses {
		total = total.Add(e.Amount)
		byCategory[e.Category] = byCategory[e.Category].Add(e.Amount)
		if _, ok := paidIn[e.PaidBy]; !ok {
			continue
		}
		paidIn[e.PaidBy] = paidIn[e.PaidBy].Add(e.Amount)
		byPartnerCategory[e.PaidBy][e.Category] = byPartnerCategory[e.PaidBy][e.Category].Add(e.Amount)
	}

	result := domain.Settlement{
		TotalSpent:        total,
		Share:             decimal.Zero,
		Partners:          make([]domain.PartnerBalance, 0, len(partners)),
		ByCategory:        byCategory,
		ByPartnerCategory: byPartnerCategory,
	}
	if len(partners) == 0 {
		return result
	}

	// Share is the exact per-partner portion. Partner rows carry it at money
	// precision with the last partner absorbing the cents.
	n := decimal.NewFromInt(int64(len(partners)))
	result.Share = total.Div(n)
	share := result.Share.Round(2)
	last := total.Sub(share.Mul(n.Sub(decimal.NewFromInt(1))))

	for i, partner := range partners {
		s := share
		if i == len(partners)-1 {
			s = last
		}
		result.Partners = append(result.Partners, domain.PartnerBalance{
			Partner: partner,
			PaidIn:  paidIn[partner],
			Share:   s,
			Balance: paidIn[partner].Sub(s),
		})
	}
	return result
}
