package domain

import "github.com/shopspring/decimal"

type SaleRequest struct {
	SKU           string          `json:"sku" validate:"required"`
	Quantity      int             `json:"quantity" validate:"gt=0"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
	DiscountPct   decimal.Decimal `json:"discount_pct" validate:"gte=0,lte=100"`
	PaymentMethod PaymentMethod   `json:"payment_method" validate:"required,oneof=Cash Transfer Card Credit"`
	Customer      string          `json:"customer,omitempty"`
	Seller        string          `json:"seller,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type SaleEditRequest struct {
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty"`
	Seller        *string          `json:"seller,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

func (r SaleEditRequest) Empty() bool {
	return r.UnitPrice == nil && r.PaymentMethod == nil && r.Seller == nil && r.Notes == nil
}

type ExpenseRequest struct {
	Date          Date            `json:"date"`
	Category      string          `json:"category" validate:"required"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0"`
	Description   string          `json:"description,omitempty"`
	PaidBy        string          `json:"paid_by" validate:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty" validate:"omitempty,oneof=Cash Transfer Card"`
	IsInvestment  bool            `json:"is_investment"`
	Notes         string          `json:"notes,omitempty"`
}

type EvenExpenseRequest struct {
	Date          Date            `json:"date"`
	Category      string          `json:"category" validate:"required"`
	TotalAmount   decimal.Decimal `json:"total_amount" validate:"gt=0"`
	Description   string          `json:"description,omitempty"`
	PaymentMethod PaymentMethod   `json:"payment_method,omitempty" validate:"omitempty,oneof=Cash Transfer Card"`
	IsInvestment  bool            `json:"is_investment"`
	Notes         string          `json:"notes,omitempty"`
}

type CustomExpenseRequest struct {
	Date             Date                       `json:"date"`
	Category         string                     `json:"category" validate:"required"`
	AmountsByPartner map[string]decimal.Decimal `json:"amounts_by_partner" validate:"required"`
	Description      string                     `json:"description,omitempty"`
	PaymentMethod    PaymentMethod              `json:"payment_method,omitempty" validate:"omitempty,oneof=Cash Transfer Card"`
	IsInvestment     bool                       `json:"is_investment"`
	Notes            string                     `json:"notes,omitempty"`
}

type ExpenseEditRequest struct {
	Date          *Date            `json:"date,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Description   *string          `json:"description,omitempty"`
	PaidBy        *string          `json:"paid_by,omitempty"`
	PaymentMethod *PaymentMethod   `json:"payment_method,omitempty"`
	IsInvestment  *bool            `json:"is_investment,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}

type ProductCreateRequest struct {
	SKU              string          `json:"sku" validate:"required,max=64"`
	Name             string          `json:"name" validate:"required"`
	Category         string          `json:"category"`
	Size             string          `json:"size"`
	Color            string          `json:"color"`
	Cost             decimal.Decimal `json:"cost" validate:"gte=0"`
	SalePrice        decimal.Decimal `json:"sale_price" validate:"gte=0"`
	Stock            int             `json:"stock" validate:"gte=0"`
	ReorderThreshold *int            `json:"reorder_threshold,omitempty"`
	Supplier         string          `json:"supplier,omitempty"`
	Notes            string          `json:"notes,omitempty"`
}

type ProductUpdateRequest struct {
	Name             *string          `json:"name,omitempty"`
	Category         *string          `json:"category,omitempty"`
	Size             *string          `json:"size,omitempty"`
	Color            *string          `json:"color,omitempty"`
	Cost             *decimal.Decimal `json:"cost,omitempty"`
	SalePrice        *decimal.Decimal `json:"sale_price,omitempty"`
	Stock            *int             `json:"stock,omitempty"`
	ReorderThreshold *int             `json:"reorder_threshold,omitempty"`
	Supplier         *string          `json:"supplier,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

type StockReceipt struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"gt=0"`
}

type OrderCreateRequest struct {
	OrderDate    Date            `json:"order_date"`
	Supplier     string          `json:"supplier" validate:"required"`
	Description  string          `json:"description,omitempty"`
	Units        int             `json:"units" validate:"gt=0"`
	UnitCost     decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	ExpectedDate *Date           `json:"expected_date,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

type OrderPayRequest struct {
	PaidBy        string        `json:"paid_by" validate:"required"`
	PaymentDate   *Date         `json:"payment_date,omitempty"`
	PaymentMethod PaymentMethod `json:"payment_method,omitempty" validate:"omitempty,oneof=Cash Transfer Card"`
}

type OrderReceiveRequest struct {
	Items []StockReceipt `json:"items" validate:"dive"`
}

type OrderEditRequest struct {
	Supplier     *string          `json:"supplier,omitempty"`
	Description  *string          `json:"description,omitempty"`
	Units        *int             `json:"units,omitempty"`
	UnitCost     *decimal.Decimal `json:"unit_cost,omitempty"`
	ExpectedDate *Date            `json:"expected_date,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

type FixedCostRequest struct {
	Concept       string          `json:"concept" validate:"required"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount" validate:"gt=0"`
	IsActive      *bool           `json:"is_active,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

type FixedCostUpdateRequest struct {
	Concept       *string          `json:"concept,omitempty"`
	MonthlyAmount *decimal.Decimal `json:"monthly_amount,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
	Notes         *string          `json:"notes,omitempty"`
}
