package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreditPayment struct {
	CreditID         int64           `json:"credit_id"`
	Payment          decimal.Decimal `json:"payment"`
	AmountPaidTotal  decimal.Decimal `json:"amount_paid_total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Completed        bool            `json:"completed"`
}

type PartnerBalance struct {
	Partner string          `json:"partner"`
	PaidIn  decimal.Decimal `json:"paid_in"`
	Share   decimal.Decimal `json:"share"`
	Balance decimal.Decimal `json:"balance"`
}

type Settlement struct {
	TotalSpent        decimal.Decimal                       `json:"total_spent"`
	Share             decimal.Decimal                       `json:"share"`
	Partners          []PartnerBalance                      `json:"partners"`
	ByCategory        map[string]decimal.Decimal            `json:"by_category"`
	ByPartnerCategory map[string]map[string]decimal.Decimal `json:"by_partner_category"`
}

type BreakEven struct {
	FixedCosts         decimal.Decimal `json:"fixed_costs"`
	AverageMargin      decimal.Decimal `json:"average_margin"`
	AverageTicket      decimal.Decimal `json:"average_ticket"`
	BreakEvenRevenue   decimal.Decimal `json:"break_even_revenue"`
	BreakEvenUnits     decimal.Decimal `json:"break_even_units"`
	DailyTarget        decimal.Decimal `json:"daily_target"`
	AccumulatedRevenue decimal.Decimal `json:"accumulated_revenue"`
	UnitsSold          int             `json:"units_sold"`
	ProgressPct        decimal.Decimal `json:"progress_pct"`
	DaysRemaining      int             `json:"days_remaining"`
	UnitsShort         decimal.Decimal `json:"units_short"`
}

// DisplayProgress clamps ProgressPct to 100 for rendering.
func (b BreakEven) DisplayProgress() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	if b.ProgressPct.GreaterThan(hundred) {
		return hundred
	}
	return b.ProgressPct
}

type DrawerState struct {
	Date           Date                              `json:"date"`
	IsOpen         bool                              `json:"is_open"`
	IsClosed       bool                              `json:"is_closed"`
	OpeningCash    decimal.Decimal                   `json:"opening_cash"`
	TotalsByMethod map[PaymentMethod]decimal.Decimal `json:"totals_by_method"`
	CashSales      decimal.Decimal                   `json:"cash_sales"`
	CashExpenses   decimal.Decimal                   `json:"cash_expenses"`
	ExpectedCash   decimal.Decimal                   `json:"expected_cash"`
	ActualClose    *decimal.Decimal                  `json:"actual_close,omitempty"`
	Notes          string                            `json:"notes,omitempty"`
}

type DrawerClose struct {
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	ActualCash   decimal.Decimal `json:"actual_cash"`
	Difference   decimal.Decimal `json:"difference"`
}

// Balanced reports whether the counted cash is within one unit of the
// expected amount.
func (c DrawerClose) Balanced() bool {
	return c.Difference.Abs().LessThan(decimal.NewFromInt(1))
}

type DailySales struct {
	Date           Date                              `json:"date"`
	Sales          []SaleLine                        `json:"sales"`
	TotalsByMethod map[PaymentMethod]decimal.Decimal `json:"totals_by_method"`
	Total          decimal.Decimal                   `json:"total"`
	Units          int                               `json:"units"`
}

type ProductRank struct {
	Name    string          `json:"name"`
	Units   int             `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
}

type MonthlySales struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	From         Date            `json:"from"`
	To           Date            `json:"to"`
	Sales        []SaleLine      `json:"sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	GrossProfit  decimal.Decimal `json:"gross_profit"`
	TotalUnits   int             `json:"total_units"`
	TopByUnits   []ProductRank   `json:"top_by_units"`
	TopByRevenue []ProductRank   `json:"top_by_revenue"`
}

type RangeSales struct {
	From   Date            `json:"from"`
	To     Date            `json:"to"`
	Sales  []SaleLine      `json:"sales,omitempty"`
	Total  decimal.Decimal `json:"total"`
	Units  int             `json:"units"`
	Cost   decimal.Decimal `json:"cost"`
	Profit decimal.Decimal `json:"profit"`
}

type DailyPoint struct {
	Date  Date            `json:"date"`
	Total decimal.Decimal `json:"total"`
	Units int             `json:"units"`
}

type InventoryTotals struct {
	SKUs      int             `json:"skus"`
	Units     int             `json:"units"`
	CostValue decimal.Decimal `json:"cost_value"`
	SaleValue decimal.Decimal `json:"sale_value"`
}

type CategoryInventory struct {
	Category string `json:"category"`
	InventoryTotals
}

type InventorySummary struct {
	Totals     InventoryTotals     `json:"totals"`
	ByCategory []CategoryInventory `json:"by_category"`
}

type ExpenseSummary struct {
	From       Date                       `json:"from"`
	To         Date                       `json:"to"`
	Expenses   []Expense                  `json:"expenses"`
	ByCategory map[string]decimal.Decimal `json:"by_category"`
	Total      decimal.Decimal            `json:"total"`
}
