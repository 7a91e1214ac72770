package finance

import (
	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
)

// DrawerState derives the expected cash for date from the drawer row (nil
// when the day was never opened) and that day's sales and expenses.
func DrawerState(date domain.Date, drawer *domain.CashDrawer, sales []domain.SaleLine, expenses []domain.Expense) domain.DrawerState {
	state := domain.DrawerState{
		Date:           date,
		OpeningCash:    decimal.Zero,
		TotalsByMethod: totalsByMethod(sales),
		CashSales:      decimal.Zero,
		CashExpenses:   decimal.Zero,
	}
	if drawer != nil {
		state.IsOpen = true
		state.IsClosed = drawer.IsClosed
		state.OpeningCash = drawer.OpeningCash
		state.ActualClose = drawer.ClosingCashActual
		state.Notes = drawer.Notes
	}

	state.CashSales = state.TotalsByMethod[domain.PaymentCash]
	for _, e := range expenses {
		if e.PaymentMethod == domain.PaymentCash {
			state.CashExpenses = state.CashExpenses.Add(e.Amount)
		}
	}
	state.ExpectedCash = state.OpeningCash.Add(state.CashSales).Sub(state.CashExpenses)
	return state
}

func CloseDrawer(state domain.DrawerState, actual decimal.Decimal) domain.DrawerClose {
	return domain.DrawerClose{
		ExpectedCash: state.ExpectedCash,
		ActualCash:   actual,
		Difference:   actual.Sub(state.ExpectedCash),
	}
}

// ApplyPayment books amount against credit. Payments that reach or exceed
// the balance settle the credit at exactly its amount.
func ApplyPayment(credit domain.Credit, amount decimal.Decimal, today domain.Date) (domain.Credit, domain.CreditPayment) {
	paid := credit.AmountPaid.Add(amount)
	remaining := credit.Amount.Sub(paid)

	updated := credit
	if remaining.Sign() <= 0 {
		updated.AmountPaid = credit.Amount
		updated.IsPaid = true
		updated.PaymentDate = &today
	} else {
		updated.AmountPaid = paid
	}

	return updated, domain.CreditPayment{
		CreditID:         credit.ID,
		Payment:          amount,
		AmountPaidTotal:  decimal.Min(paid, credit.Amount),
		RemainingBalance: decimal.Max(remaining, decimal.Zero),
		Completed:        updated.IsPaid,
	}
}

func totalsByMethod(sales []domain.SaleLine) map[domain.PaymentMethod]decimal.Decimal {
	totals := make(map[domain.PaymentMethod]decimal.Decimal, len(domain.PaymentMethods))
	for _, s := range sales {
		totals[s.PaymentMethod] = totals[s.PaymentMethod].Add(s.Total)
	}
	return totals
}
