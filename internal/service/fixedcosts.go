package service

import (
	"context"
	"strings"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func (s *Service) CreateFixedCost(ctx context.Context, req domain.FixedCostRequest) (id int64, err error) {
	defer func() { s.record(ctx, "fixed_cost_create", err) }()

	req.Concept = strings.TrimSpace(req.Concept)
	if err := s.check(req); err != nil {
		return 0, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	return s.repo.CreateFixedCost(ctx, domain.FixedCost{
		Concept:       req.Concept,
		MonthlyAmount: domain.Money(req.MonthlyAmount),
		IsActive:      active,
		Notes:         req.Notes,
	})
}

func (s *Service) ListFixedCosts(ctx context.Context, activeOnly bool) ([]domain.FixedCost, error) {
	return s.repo.ListFixedCosts(ctx, activeOnly)
}

func (s *Service) UpdateFixedCost(ctx context.Context, id int64, req domain.FixedCostUpdateRequest) (err error) {
	defer func() { s.record(ctx, "fixed_cost_update", err) }()

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		c, err := repo.GetFixedCost(ctx, id)
		if err != nil {
			return err
		}
		if req.Concept != nil {
			if strings.TrimSpace(*req.Concept) == "" {
				return store.Invalid("concept", "required")
			}
			c.Concept = strings.TrimSpace(*req.Concept)
		}
		if req.MonthlyAmount != nil {
			if !req.MonthlyAmount.IsPositive() {
				return store.Invalid("monthly_amount", "gt=0")
			}
			c.MonthlyAmount = domain.Money(*req.MonthlyAmount)
		}
		if req.IsActive != nil {
			c.IsActive = *req.IsActive
		}
		if req.Notes != nil {
			c.Notes = *req.Notes
		}
		return repo.UpdateFixedCost(ctx, *c)
	})
}

func (s *Service) DeleteFixedCost(ctx context.Context, id int64) (err error) {
	defer func() { s.record(ctx, "fixed_cost_delete", err) }()
	return s.repo.DeleteFixedCost(ctx, id)
}
