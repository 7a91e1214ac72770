package service

import (
	"context"
	"fmt"
	"time"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

func (s *Service) PartnerSettlement(ctx context.Context) (domain.Settlement, error) {
	return cached(ctx, s, "settlement", func() (domain.Settlement, error) {
		expenses, err := s.repo.ListExpenses(ctx, store.Range{})
		if err != nil {
			return domain.Settlement{}, err
		}
		return finance.Settle(expenses, s.partners), nil
	})
}

// BreakEven compares this month's sales with the revenue needed to cover
// active fixed costs.
func (s *Service) BreakEven(ctx context.Context) (domain.BreakEven, error) {
	today := s.Today()
	return cached(ctx, s, "break_even:"+today.String(), func() (domain.BreakEven, error) {
		costs, err := s.repo.ListFixedCosts(ctx, true)
		if err != nil {
			return domain.BreakEven{}, err
		}
		products, err := s.repo.ListProducts(ctx)
		if err != nil {
			return domain.BreakEven{}, err
		}
		month, err := s.monthlySales(ctx, today.Year(), today.Month())
		if err != nil {
			return domain.BreakEven{}, err
		}

		return finance.BreakEven(finance.BreakEvenInput{
			FixedCosts:     costs,
			Products:       products,
			MonthRevenue:   month.TotalRevenue,
			MonthUnits:     month.TotalUnits,
			Today:          today,
			FallbackTicket: s.fallbackTicket,
		}), nil
	})
}

func (s *Service) DailySales(ctx context.Context, date domain.Date) (domain.DailySales, error) {
	date = s.dateOrToday(date)
	sales, err := s.repo.ListSales(ctx, store.Range{From: date, To: date})
	if err != nil {
		return domain.DailySales{}, err
	}
	return finance.SummarizeDay(date, sales), nil
}

func (s *Service) MonthlySales(ctx context.Context, year int, month time.Month) (domain.MonthlySales, error) {
	if month < time.January || month > time.December {
		return domain.MonthlySales{}, store.Invalid("month", "must be 1-12")
	}
	return cached(ctx, s, fmt.Sprintf("monthly:%04d-%02d", year, month), func() (domain.MonthlySales, error) {
		return s.monthlySales(ctx, year, month)
	})
}

func (s *Service) monthlySales(ctx context.Context, year int, month time.Month) (domain.MonthlySales, error) {
	from, next := domain.MonthRange(year, month)
	sales, err := s.repo.ListSales(ctx, store.Range{From: from, To: next.AddDays(-1)})
	if err != nil {
		return domain.MonthlySales{}, err
	}
	return finance.SummarizeMonth(year, month, sales), nil
}

// WeeklySales covers Monday of the current week through today.
func (s *Service) WeeklySales(ctx context.Context) (domain.RangeSales, error) {
	today := s.Today()
	return s.SalesRange(ctx, today.WeekStart(), today)
}

// PreviousWeekSales covers Monday through Sunday of last week.
func (s *Service) PreviousWeekSales(ctx context.Context) (domain.RangeSales, error) {
	monday, sunday := s.Today().PreviousWeek()
	return s.SalesRange(ctx, monday, sunday)
}

func (s *Service) SalesRange(ctx context.Context, from domain.Date, to domain.Date) (domain.RangeSales, error) {
	if from.IsZero() || to.IsZero() {
		return domain.RangeSales{}, store.Invalid("range", "from and to are required")
	}
	if to.Before(from) {
		return domain.RangeSales{}, store.Invalid("range", "to is before from")
	}
	sales, err := s.repo.ListSales(ctx, store.Range{From: from, To: to})
	if err != nil {
		return domain.RangeSales{}, err
	}
	return finance.SummarizeRange(from, to, sales), nil
}

func (s *Service) DailySeries(ctx context.Context, year int, month time.Month) ([]domain.DailyPoint, error) {
	if month < time.January || month > time.December {
		return nil, store.Invalid("month", "must be 1-12")
	}
	from, next := domain.MonthRange(year, month)
	sales, err := s.repo.ListSales(ctx, store.Range{From: from, To: next.AddDays(-1)})
	if err != nil {
		return nil, err
	}
	return finance.DailySeries(sales), nil
}

func (s *Service) InventorySummary(ctx context.Context) (domain.InventorySummary, error) {
	return cached(ctx, s, "inventory", func() (domain.InventorySummary, error) {
		products, err := s.repo.ListProducts(ctx)
		if err != nil {
			return domain.InventorySummary{}, err
		}
		return finance.SummarizeInventory(products), nil
	})
}

func (s *Service) MonthlyExpenses(ctx context.Context, year int, month time.Month) (domain.ExpenseSummary, error) {
	if month < time.January || month > time.December {
		return domain.ExpenseSummary{}, store.Invalid("month", "must be 1-12")
	}
	from, next := domain.MonthRange(year, month)
	return s.ExpensesRange(ctx, from, next.AddDays(-1))
}

func (s *Service) ExpensesRange(ctx context.Context, from domain.Date, to domain.Date) (domain.ExpenseSummary, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return domain.ExpenseSummary{}, store.Invalid("range", "to is before from")
	}
	expenses, err := s.repo.ListExpenses(ctx, store.Range{From: from, To: to})
	if err != nil {
		return domain.ExpenseSummary{}, err
	}
	return finance.SummarizeExpenses(from, to, expenses), nil
}
