package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (id int64, err error) {
	defer func() { s.record(ctx, "order_create", err) }()

	req.Supplier = strings.TrimSpace(req.Supplier)
	if err := s.check(req); err != nil {
		return 0, err
	}

	unitCost := domain.Money(req.UnitCost)
	return s.repo.CreateOrder(ctx, domain.SupplierOrder{
		OrderDate:    s.dateOrToday(req.OrderDate),
		Supplier:     req.Supplier,
		Description:  req.Description,
		Units:        req.Units,
		UnitCost:     unitCost,
		Total:        orderTotal(req.Units, unitCost),
		Status:       domain.OrderPending,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
	})
}

func (s *Service) GetOrder(ctx context.Context, id int64) (domain.SupplierOrder, error) {
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.SupplierOrder{}, err
	}
	return *o, nil
}

// Orders lists orders, optionally only those in status.
func (s *Service) Orders(ctx context.Context, status domain.OrderStatus) ([]domain.SupplierOrder, error) {
	if status != "" && !status.Valid() {
		return nil, store.Invalid("status", "oneof=Pending Paid Received")
	}
	return s.repo.ListOrders(ctx, status)
}

// SupplierDebt is the total still owed on Pending orders.
func (s *Service) SupplierDebt(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.repo.ListOrders(ctx, domain.OrderPending)
	if err != nil {
		return decimal.Zero, err
	}
	debt := decimal.Zero
	for _, o := range orders {
		debt = debt.Add(o.Total)
	}
	return debt, nil
}

// PayOrder moves a Pending order to Paid and books its total as a
// merchandise expense of the payer, in one transaction.
func (s *Service) PayOrder(ctx context.Context, id int64, req domain.OrderPayRequest) (expenseID int64, err error) {
	defer func() { s.record(ctx, "order_pay", err) }()

	req.PaidBy = strings.TrimSpace(req.PaidBy)
	if err := s.check(req); err != nil {
		return 0, err
	}
	if err := s.checkPartner("paid_by", req.PaidBy); err != nil {
		return 0, err
	}
	method := req.PaymentMethod
	if method == "" {
		method = domain.PaymentTransfer
	}
	date := s.Today()
	if req.PaymentDate != nil && !req.PaymentDate.IsZero() {
		date = *req.PaymentDate
	}

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderPending {
			return &store.StateError{Entity: "order", ID: id, Current: string(order.Status), Want: string(domain.OrderPending)}
		}

		description := fmt.Sprintf("Order #%d - %s", order.ID, order.Supplier)
		if order.Description != "" {
			description += ": " + order.Description
		}
		expenseID, err = repo.CreateExpense(ctx, domain.Expense{
			Date:          date,
			Category:      s.merchandise,
			Amount:        order.Total,
			Description:   description,
			PaymentMethod: method,
			PaidBy:        req.PaidBy,
		})
		if err != nil {
			return asValidation("expense", err)
		}
		return repo.TransitionOrder(ctx, id, domain.OrderPending, domain.OrderPaid, req.PaidBy)
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("order_id", id).Int64("expense_id", expenseID).Str("paid_by", req.PaidBy).Msg("order paid")
	return expenseID, nil
}

// ReceiveOrder moves a Paid order to Received and adds the received units to
// stock. An unknown sku aborts the whole receipt.
func (s *Service) ReceiveOrder(ctx context.Context, id int64, req domain.OrderReceiveRequest) (err error) {
	defer func() { s.record(ctx, "order_receive", err) }()

	for i := range req.Items {
		req.Items[i].SKU = normalizeSKU(req.Items[i].SKU)
	}
	if err := s.check(req); err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		if order.Status != domain.OrderPaid {
			return &store.StateError{Entity: "order", ID: id, Current: string(order.Status), Want: string(domain.OrderPaid)}
		}

		for _, item := range req.Items {
			if err := repo.IncreaseStock(ctx, item.SKU, item.Quantity); err != nil {
				return err
			}
		}
		return repo.TransitionOrder(ctx, id, domain.OrderPaid, domain.OrderReceived, "")
	})
}

// EditOrder updates order fields and re-totals it when units or unit cost
// change. Status is never edited here.
func (s *Service) EditOrder(ctx context.Context, id int64, req domain.OrderEditRequest) (err error) {
	defer func() { s.record(ctx, "order_edit", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		order, err := repo.GetOrder(ctx, id)
		if err != nil {
			return err
		}

		if req.Supplier != nil {
			if strings.TrimSpace(*req.Supplier) == "" {
				return store.Invalid("supplier", "required")
			}
			order.Supplier = strings.TrimSpace(*req.Supplier)
		}
		if req.Description != nil {
			order.Description = *req.Description
		}
		if req.Units != nil {
			if *req.Units <= 0 {
				return store.Invalid("units", "gt=0")
			}
			order.Units = *req.Units
		}
		if req.UnitCost != nil {
			if req.UnitCost.IsNegative() {
				return store.Invalid("unit_cost", "gte=0")
			}
			order.UnitCost = domain.Money(*req.UnitCost)
		}
		if req.Units != nil || req.UnitCost != nil {
			order.Total = orderTotal(order.Units, order.UnitCost)
		}
		if req.ExpectedDate != nil {
			order.ExpectedDate = req.ExpectedDate
		}
		if req.Notes != nil {
			order.Notes = *req.Notes
		}
		return asValidation("order", repo.UpdateOrder(ctx, *order))
	})
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) (err error) {
	defer func() { s.record(ctx, "order_delete", err) }()
	return s.repo.DeleteOrder(ctx, id)
}

func orderTotal(units int, unitCost decimal.Decimal) decimal.Decimal {
	return domain.Money(unitCost.Mul(decimal.NewFromInt(int64(units))))
}
