package domain

import (
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "Cash"
	PaymentTransfer PaymentMethod = "Transfer"
	PaymentCard     PaymentMethod = "Card"
	PaymentCredit   PaymentMethod = "Credit"
)

var PaymentMethods = []PaymentMethod{PaymentCash, PaymentTransfer, PaymentCard, PaymentCredit}

func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

type OrderStatus string

const (
	OrderPending  OrderStatus = "Pending"
	OrderPaid     OrderStatus = "Paid"
	OrderReceived OrderStatus = "Received"
)

func (s OrderStatus) Valid() bool {
	return s == OrderPending || s == OrderPaid || s == OrderReceived
}

const DefaultReorderThreshold = 3

type Product struct {
	SKU              string          `json:"sku"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Size             string          `json:"size"`
	Color            string          `json:"color"`
	Cost             decimal.Decimal `json:"cost"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	Stock            int             `json:"stock"`
	ReorderThreshold int             `json:"reorder_threshold"`
	Supplier         string          `json:"supplier,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

type Sale struct {
	ID            int64           `json:"id"`
	Date          Date            `json:"date"`
	Time          string          `json:"time"`
	SKU           string          `json:"sku"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	DiscountPct   decimal.Decimal `json:"discount_pct"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Customer      string          `json:"customer,omitempty"`
	Seller        string          `json:"seller,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// SaleLine is a sale joined with the product it sold. ProductName and
// UnitCost are empty when the product row no longer exists.
type SaleLine struct {
	Sale
	ProductName string          `json:"product_name,omitempty"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
}

type Credit struct {
	ID          int64           `json:"id"`
	SaleID      *int64          `json:"sale_id,omitempty"`
	Customer    string          `json:"customer"`
	Amount      decimal.Decimal `json:"amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	IssueDate   Date            `json:"issue_date"`
	PaymentDate *Date           `json:"payment_date,omitempty"`
	IsPaid      bool            `json:"is_paid"`
	Notes       string          `json:"notes,omitempty"`
}

func (c Credit) Balance() decimal.Decimal {
	return c.Amount.Sub(c.AmountPaid)
}

type CreditLine struct {
	Credit
	SaleDate    *Date  `json:"sale_date,omitempty"`
	SKU         string `json:"sku,omitempty"`
	ProductName string `json:"product_name,omitempty"`
}

type Expense struct {
	ID            int64           `json:"id"`
	Date          Date            `json:"date"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty"`
	PaidBy        string          `json:"paid_by"`
	IsInvestment  bool            `json:"is_investment"`
	Notes         string          `json:"notes,omitempty"`
}

type CashDrawer struct {
	Date              Date             `json:"date"`
	OpeningCash       decimal.Decimal  `json:"opening_cash"`
	ClosingCashActual *decimal.Decimal `json:"closing_cash_actual,omitempty"`
	IsClosed          bool             `json:"is_closed"`
	Notes             string           `json:"notes,omitempty"`
}

type SupplierOrder struct {
	ID           int64           `json:"id"`
	OrderDate    Date            `json:"order_date"`
	Supplier     string          `json:"supplier"`
	Description  string          `json:"description,omitempty"`
	Units        int             `json:"units"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	PaidBy       string          `json:"paid_by,omitempty"`
	ExpectedDate *Date           `json:"expected_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

type FixedCost struct {
	ID            int64           `json:"id"`
	Concept       string          `json:"concept"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	IsActive      bool            `json:"is_active"`
	Notes         string          `json:"notes,omitempty"`
}

// Money rounds an amount to the precision every backend stores.
func Money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
