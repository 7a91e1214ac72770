package sqlstore

import (
	"context"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const expenseColumns = `id, expense_date, category, amount, COALESCE(description, ''), COALESCE(payment_method, ''), paid_by, is_investment, COALESCE(notes, '')`

func scanExpense(row rowScanner) (domain.Expense, error) {
	var e domain.Expense
	err := row.Scan(&e.ID, &e.Date, &e.Category, &e.Amount, &e.Description, &e.PaymentMethod, &e.PaidBy, &e.IsInvestment, &e.Notes)
	return e, err
}

func (s *Store) CreateExpense(ctx context.Context, e domain.Expense) (int64, error) {
	return s.insert(ctx, `
		INSERT INTO expenses (expense_date, category, amount, description, payment_method, paid_by, is_investment, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Date.String(), e.Category, money(e.Amount), nullIfEmpty(e.Description), nullIfEmpty(string(e.PaymentMethod)), e.PaidBy, e.IsInvestment, nullIfEmpty(e.Notes))
}

func (s *Store) GetExpense(ctx context.Context, id int64) (*domain.Expense, error) {
	e, err := scanExpense(s.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`+s.forUpdate(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("expense #%d", id)
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, e domain.Expense) error {
	return s.execOne(ctx, store.NotFoundf("expense #%d", e.ID), `
		UPDATE expenses
		SET expense_date = ?, category = ?, amount = ?, description = ?, payment_method = ?, paid_by = ?, is_investment = ?, notes = ?
		WHERE id = ?
	`, e.Date.String(), e.Category, money(e.Amount), nullIfEmpty(e.Description), nullIfEmpty(string(e.PaymentMethod)), e.PaidBy, e.IsInvestment, nullIfEmpty(e.Notes), e.ID)
}

func (s *Store) DeleteExpense(ctx context.Context, id int64) error {
	return s.execOne(ctx, store.NotFoundf("expense #%d", id), `DELETE FROM expenses WHERE id = ?`, id)
}

func (s *Store) ListExpenses(ctx context.Context, r store.Range) ([]domain.Expense, error) {
	where, args := rangeFilter("expense_date", r)
	rows, err := s.query(ctx, `SELECT `+expenseColumns+` FROM expenses`+where+` ORDER BY expense_date DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	expenses := make([]domain.Expense, 0, 64)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return expenses, nil
}
