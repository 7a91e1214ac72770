package finance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
)

const topProducts = 10

func SummarizeDay(date domain.Date, sales []domain.SaleLine) domain.DailySales {
	total, units := sumSales(sales)
	return domain.DailySales{
		Date:           date,
		Sales:          sales,
		TotalsByMethod: totalsByMethod(sales),
		Total:          total,
		Units:          units,
	}
}

// SummarizeMonth rolls up the sales of one month. Sales whose product was
// deleted contribute no cost and rank under their sku.
func SummarizeMonth(year int, month time.Month, sales []domain.SaleLine) domain.MonthlySales {
	from, next := domain.MonthRange(year, month)
	total, units := sumSales(sales)
	cost := sumCost(sales)

	return domain.MonthlySales{
		Year:         year,
		Month:        month,
		From:         from,
		To:           next.AddDays(-1),
		Sales:        sales,
		TotalRevenue: total,
		TotalCost:    cost,
		GrossProfit:  total.Sub(cost),
		TotalUnits:   units,
		TopByUnits:   rank(sales, byUnits),
		TopByRevenue: rank(sales, byRevenue),
	}
}

func SummarizeRange(from domain.Date, to domain.Date, sales []domain.SaleLine) domain.RangeSales {
	total, units := sumSales(sales)
	cost := sumCost(sales)
	return domain.RangeSales{
		From:   from,
		To:     to,
		Sales:  sales,
		Total:  total,
		Units:  units,
		Cost:   cost,
		Profit: total.Sub(cost),
	}
}

// DailySeries groups sales by day, ascending, skipping days without sales.
func DailySeries(sales []domain.SaleLine) []domain.DailyPoint {
	byDay := map[domain.Date]*domain.DailyPoint{}
	for _, s := range sales {
		point, ok := byDay[s.Date]
		if !ok {
			point = &domain.DailyPoint{Date: s.Date, Total: decimal.Zero}
			byDay[s.Date] = point
		}
		point.Total = point.Total.Add(s.Total)
		point.Units += s.Quantity
	}

	series := make([]domain.DailyPoint, 0, len(byDay))
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

// SummarizeInventory totals the catalog globally and per category. Categories
// are ordered by sale value, highest first.
func SummarizeInventory(products []domain.Product) domain.InventorySummary {
	totals := domain.InventoryTotals{CostValue: decimal.Zero, SaleValue: decimal.Zero}
	byCategory := map[string]*domain.CategoryInventory{}

	for _, p := range products {
		stock := decimal.NewFromInt(int64(p.Stock))
		costValue := p.Cost.Mul(stock)
		saleValue := p.SalePrice.Mul(stock)

		addInventory(&totals, p.Stock, costValue, saleValue)

		cat, ok := byCategory[p.Category]
		if !ok {
			cat = &domain.CategoryInventory{Category: p.Category, InventoryTotals: domain.InventoryTotals{CostValue: decimal.Zero, SaleValue: decimal.Zero}}
			byCategory[p.Category] = cat
		}
		addInventory(&cat.InventoryTotals, p.Stock, costValue, saleValue)
	}

	categories := make([]domain.CategoryInventory, 0, len(byCategory))
	for _, cat := range byCategory {
		categories = append(categories, *cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].SaleValue.Cmp(categories[j].SaleValue); c != 0 {
			return c > 0
		}
		return categories[i].Category < categories[j].Category
	})

	return domain.InventorySummary{Totals: totals, ByCategory: categories}
}

func SummarizeExpenses(from domain.Date, to domain.Date, expenses []domain.Expense) domain.ExpenseSummary {
	summary := domain.ExpenseSummary{
		From:       from,
		To:         to,
		Expenses:   expenses,
		ByCategory: map[string]decimal.Decimal{},
		Total:      decimal.Zero,
	}
	for _, e := range expenses {
		summary.ByCategory[e.Category] = summary.ByCategory[e.Category].Add(e.Amount)
		summary.Total = summary.Total.Add(e.Amount)
	}
	return summary
}

func addInventory(t *domain.InventoryTotals, units int, costValue decimal.Decimal, saleValue decimal.Decimal) {
	t.SKUs++
	t.Units += units
	t.CostValue = t.CostValue.Add(costValue)
	t.SaleValue = t.SaleValue.Add(saleValue)
}

func sumSales(sales []domain.SaleLine) (decimal.Decimal, int) {
	total := decimal.Zero
	units := 0
	for _, s := range sales {
		total = total.Add(s.Total)
		units += s.Quantity
	}
	return total, units
}

func sumCost(sales []domain.SaleLine) decimal.Decimal {
	cost := decimal.Zero
	for _, s := range sales {
		cost = cost.Add(s.UnitCost.Mul(decimal.NewFromInt(int64(s.Quantity))))
	}
	return cost
}

type rankOrder func(a domain.ProductRank, b domain.ProductRank) int

func byUnits(a domain.ProductRank, b domain.ProductRank) int {
	return a.Units - b.Units
}

func byRevenue(a domain.ProductRank, b domain.ProductRank) int {
	return a.Revenue.Cmp(b.Revenue)
}

func rank(sales []domain.SaleLine, order rankOrder) []domain.ProductRank {
	byName := map[string]*domain.ProductRank{}
	for _, s := range sales {
		name := s.ProductName
		if name == "" {
			name = s.SKU
		}
		r, ok := byName[name]
		if !ok {
			r = &domain.ProductRank{Name: name, Revenue: decimal.Zero}
			byName[name] = r
		}
		r.Units += s.Quantity
		r.Revenue = r.Revenue.Add(s.Total)
	}

	ranks := make([]domain.ProductRank, 0, len(byName))
	for _, r := range byName {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if c := order(ranks[i], ranks[j]); c != 0 {
			return c > 0
		}
		return ranks[i].Name < ranks[j].Name
	})
	if len(ranks) > topProducts {
		ranks = ranks[:topProducts]
	}
	return ranks
}
