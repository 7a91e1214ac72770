package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

// RecordExpense books one payment made by one partner.
func (s *Service) RecordExpense(ctx context.Context, req domain.ExpenseRequest) (id int64, err error) {
	defer func() { s.record(ctx, "expense_record", err) }()

	req.PaidBy = strings.TrimSpace(req.PaidBy)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.check(req); err != nil {
		return 0, err
	}
	if err := s.checkPartner("paid_by", req.PaidBy); err != nil {
		return 0, err
	}

	id, err = s.repo.CreateExpense(ctx, domain.Expense{
		Date:          s.dateOrToday(req.Date),
		Category:      req.Category,
		Amount:        domain.Money(req.Amount),
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		PaidBy:        req.PaidBy,
		IsInvestment:  req.IsInvestment,
		Notes:         req.Notes,
	})
	if err != nil {
		return 0, asValidation("expense", err)
	}
	return id, nil
}

// RecordEvenExpense splits total_amount into one row per partner. The rows
// always sum to the requested total.
func (s *Service) RecordEvenExpense(ctx context.Context, req domain.EvenExpenseRequest) (ids []int64, err error) {
	defer func() { s.record(ctx, "expense_record_even", err) }()

	req.Category = strings.TrimSpace(req.Category)
	if err := s.check(req); err != nil {
		return nil, err
	}

	shares, err := finance.SplitEven(domain.Money(req.TotalAmount), s.partners)
	if err != nil {
		if errors.Is(err, finance.ErrShareTooSmall) {
			return nil, store.Invalid("total_amount", err.Error())
		}
		return nil, err
	}

	template := domain.Expense{
		Date:          s.dateOrToday(req.Date),
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		IsInvestment:  req.IsInvestment,
		Notes:         req.Notes,
	}
	return s.insertShares(ctx, template, shares)
}

// RecordCustomExpense books one row per partner with a positive amount.
// Partners mapped to zero, or left out, get no row.
func (s *Service) RecordCustomExpense(ctx context.Context, req domain.CustomExpenseRequest) (ids []int64, err error) {
	defer func() { s.record(ctx, "expense_record_custom", err) }()

	req.Category = strings.TrimSpace(req.Category)
	if err := s.check(req); err != nil {
		return nil, err
	}
	amounts := make(map[string]decimal.Decimal, len(req.AmountsByPartner))
	for partner, amount := range req.AmountsByPartner {
		partner = strings.TrimSpace(partner)
		if err := s.checkPartner("amounts_by_partner", partner); err != nil {
			return nil, err
		}
		amounts[partner] = domain.Money(amount)
	}

	shares := finance.SplitCustom(amounts, s.partners)
	if len(shares) == 0 {
		return nil, store.Invalid("amounts_by_partner", "at least one positive amount required")
	}

	template := domain.Expense{
		Date:          s.dateOrToday(req.Date),
		Category:      req.Category,
		Description:   req.Description,
		PaymentMethod: req.PaymentMethod,
		IsInvestment:  req.IsInvestment,
		Notes:         req.Notes,
	}
	return s.insertShares(ctx, template, shares)
}

func (s *Service) insertShares(ctx context.Context, template domain.Expense, shares []finance.Share) ([]int64, error) {
	ids := make([]int64, 0, len(shares))
	err := s.repo.WithTx(ctx, func(repo store.Repository) error {
		for _, share := range shares {
			e := template
			e.PaidBy = share.Partner
			e.Amount = share.Amount
			id, err := repo.CreateExpense(ctx, e)
			if err != nil {
				return asValidation("expense", err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *Service) EditExpense(ctx context.Context, id int64, req domain.ExpenseEditRequest) (err error) {
	defer func() { s.record(ctx, "expense_edit", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		e, err := repo.GetExpense(ctx, id)
		if err != nil {
			return err
		}

		if req.Date != nil && !req.Date.IsZero() {
			e.Date = *req.Date
		}
		if req.Category != nil {
			if strings.TrimSpace(*req.Category) == "" {
				return store.Invalid("category", "required")
			}
			e.Category = strings.TrimSpace(*req.Category)
		}
		if req.Amount != nil {
			if !req.Amount.IsPositive() {
				return store.Invalid("amount", "gt=0")
			}
			e.Amount = domain.Money(*req.Amount)
		}
		if req.Description != nil {
			e.Description = *req.Description
		}
		if req.PaidBy != nil {
			if err := s.checkPartner("paid_by", strings.TrimSpace(*req.PaidBy)); err != nil {
				return err
			}
			e.PaidBy = strings.TrimSpace(*req.PaidBy)
		}
		if req.PaymentMethod != nil {
			if *req.PaymentMethod != "" && !expenseMethod(*req.PaymentMethod) {
				return store.Invalid("payment_method", "oneof=Cash Transfer Card")
			}
			e.PaymentMethod = *req.PaymentMethod
		}
		if req.IsInvestment != nil {
			e.IsInvestment = *req.IsInvestment
		}
		if req.Notes != nil {
			e.Notes = *req.Notes
		}
		return asValidation("expense", repo.UpdateExpense(ctx, *e))
	})
}

func (s *Service) DeleteExpense(ctx context.Context, id int64) (err error) {
	defer func() { s.record(ctx, "expense_delete", err) }()
	return s.repo.DeleteExpense(ctx, id)
}

func (s *Service) GetExpense(ctx context.Context, id int64) (domain.Expense, error) {
	e, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return domain.Expense{}, err
	}
	return *e, nil
}

func (s *Service) dateOrToday(d domain.Date) domain.Date {
	if d.IsZero() {
		return s.Today()
	}
	return d
}

// expenseMethod reports whether m can pay an expense. Credit is a sale-side
// method only.
func expenseMethod(m domain.PaymentMethod) bool {
	return m.Valid() && m != domain.PaymentCredit
}
