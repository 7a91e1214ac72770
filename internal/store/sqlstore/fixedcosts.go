package sqlstore

import (
	"context"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const fixedCostColumns = `id, concept, monthly_amount, is_active, COALESCE(notes, '')`

func scanFixedCost(row rowScanner) (domain.FixedCost, error) {
	var c domain.FixedCost
	err := row.Scan(&c.ID, &c.Concept, &c.MonthlyAmount, &c.IsActive, &c.Notes)
	return c, err
}

func (s *Store) CreateFixedCost(ctx context.Context, c domain.FixedCost) (int64, error) {
	return s.insert(ctx, `
		INSERT INTO fixed_costs (concept, monthly_amount, is_active, notes) VALUES (?, ?, ?, ?)
	`, c.Concept, money(c.MonthlyAmount), c.IsActive, nullIfEmpty(c.Notes))
}

func (s *Store) GetFixedCost(ctx context.Context, id int64) (*domain.FixedCost, error) {
	c, err := scanFixedCost(s.queryRow(ctx, `SELECT `+fixedCostColumns+` FROM fixed_costs WHERE id = ?`+s.forUpdate(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("fixed cost #%d", id)
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateFixedCost(ctx context.Context, c domain.FixedCost) error {
	return s.execOne(ctx, store.NotFoundf("fixed cost #%d", c.ID), `
		UPDATE fixed_costs SET concept = ?, monthly_amount = ?, is_active = ?, notes = ? WHERE id = ?
	`, c.Concept, money(c.MonthlyAmount), c.IsActive, nullIfEmpty(c.Notes), c.ID)
}

func (s *Store) DeleteFixedCost(ctx context.Context, id int64) error {
	return s.execOne(ctx, store.NotFoundf("fixed cost #%d", id), `DELETE FROM fixed_costs WHERE id = ?`, id)
}

func (s *Store) ListFixedCosts(ctx context.Context, activeOnly bool) ([]domain.FixedCost, error) {
	query := `SELECT ` + fixedCostColumns + ` FROM fixed_costs`
	var args []any
	if activeOnly {
		query += ` WHERE is_active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY concept, id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	costs := make([]domain.FixedCost, 0, 16)
	for rows.Next() {
		c, err := scanFixedCost(rows)
		if err != nil {
			return nil, err
		}
		costs = append(costs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return costs, nil
}
