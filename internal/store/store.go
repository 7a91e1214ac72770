package store

import (
	"context"
	"errors"
	"fmt"

	"orvann/backend/internal/domain"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidState        = errors.New("invalid state")
	ErrDuplicateKey        = errors.New("duplicate key")
	ErrHasDependentSales   = errors.New("product has dependent sales")
	ErrAlreadySettled      = errors.New("credit already settled")
	ErrConstraintViolation = errors.New("constraint violation")
)

// FieldError is a validation failure on one input field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

func Invalid(field string, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

type StockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.SKU, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// StateError reports an operation attempted against an entity in the wrong
// lifecycle stage.
type StateError struct {
	Entity  string
	ID      int64
	Current string
	Want    string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s #%d is %s, expected %s", e.Entity, e.ID, e.Current, e.Want)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// NotFoundf wraps ErrNotFound with the missing entity.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

func IsClientError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrDuplicateKey) ||
		errors.Is(err, ErrHasDependentSales) ||
		errors.Is(err, ErrAlreadySettled) ||
		errors.Is(err, ErrConstraintViolation)
}

// Range is an inclusive date filter. Zero bounds are open.
type Range struct {
	From domain.Date
	To   domain.Date
}

type Repository interface {
	// WithTx runs fn against a repository bound to one database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(Repository) error) error

	EnsurePartners(ctx context.Context, names []string) error

	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListLowStock(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, sku string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) error
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, sku string) error
	IncreaseStock(ctx context.Context, sku string, qty int) error
	DecreaseStock(ctx context.Context, sku string, qty int) error
	CountSalesBySKU(ctx context.Context, sku string) (int, error)

	CreateSale(ctx context.Context, sale domain.Sale) (int64, error)
	GetSale(ctx context.Context, id int64) (*domain.Sale, error)
	UpdateSale(ctx context.Context, sale domain.Sale) error
	DeleteSale(ctx context.Context, id int64) error
	ListSales(ctx context.Context, r Range) ([]domain.SaleLine, error)

	CreateCredit(ctx context.Context, credit domain.Credit) (int64, error)
	GetCredit(ctx context.Context, id int64) (*domain.Credit, error)
	GetCreditBySale(ctx context.Context, saleID int64) (*domain.Credit, error)
	UpdateCredit(ctx context.Context, credit domain.Credit) error
	DeleteCreditsBySale(ctx context.Context, saleID int64) error
	ListCredits(ctx context.Context, pendingOnly bool) ([]domain.CreditLine, error)

	CreateExpense(ctx context.Context, expense domain.Expense) (int64, error)
	GetExpense(ctx context.Context, id int64) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, expense domain.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
	ListExpenses(ctx context.Context, r Range) ([]domain.Expense, error)

	GetCashDrawer(ctx context.Context, date domain.Date) (*domain.CashDrawer, error)
	UpsertCashDrawer(ctx context.Context, drawer domain.CashDrawer) error

	CreateOrder(ctx context.Context, order domain.SupplierOrder) (int64, error)
	GetOrder(ctx context.Context, id int64) (*domain.SupplierOrder, error)
	UpdateOrder(ctx context.Context, order domain.SupplierOrder) error
	TransitionOrder(ctx context.Context, id int64, from domain.OrderStatus, to domain.OrderStatus, paidBy string) error
	DeleteOrder(ctx context.Context, id int64) error
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.SupplierOrder, error)

	CreateFixedCost(ctx context.Context, cost domain.FixedCost) (int64, error)
	GetFixedCost(ctx context.Context, id int64) (*domain.FixedCost, error)
	UpdateFixedCost(ctx context.Context, cost domain.FixedCost) error
	DeleteFixedCost(ctx context.Context, id int64) error
	ListFixedCosts(ctx context.Context, activeOnly bool) ([]domain.FixedCost, error)
}
