package sqlstore

import (
	"context"
	"database/sql"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const creditColumns = `c.id, c.sale_id, c.customer, c.amount, c.amount_paid, c.issue_date, c.payment_date, c.is_paid, COALESCE(c.notes, '')`

func scanCredit(row rowScanner, extra ...any) (domain.Credit, error) {
	var (
		c           domain.Credit
		saleID      sql.NullInt64
		paymentDate domain.Date
	)
	dest := []any{&c.ID, &saleID, &c.Customer, &c.Amount, &c.AmountPaid, &c.IssueDate, &paymentDate, &c.IsPaid, &c.Notes}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Credit{}, err
	}
	if saleID.Valid {
		id := saleID.Int64
		c.SaleID = &id
	}
	c.PaymentDate = datePtr(paymentDate)
	return c, nil
}

func (s *Store) CreateCredit(ctx context.Context, c domain.Credit) (int64, error) {
	var saleID any
	if c.SaleID != nil {
		saleID = *c.SaleID
	}
	return s.insert(ctx, `
		INSERT INTO credits (sale_id, customer, amount, amount_paid, issue_date, payment_date, is_paid, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, saleID, c.Customer, money(c.Amount), money(c.AmountPaid), c.IssueDate.String(), nullDate(c.PaymentDate), c.IsPaid, nullIfEmpty(c.Notes))
}

func (s *Store) GetCredit(ctx context.Context, id int64) (*domain.Credit, error) {
	c, err := scanCredit(s.queryRow(ctx, `SELECT `+creditColumns+` FROM credits c WHERE c.id = ?`+s.forUpdate(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("credit #%d", id)
		}
		return nil, err
	}
	return &c, nil
}

// GetCreditBySale returns the credit opened by a sale.
func (s *Store) GetCreditBySale(ctx context.Context, saleID int64) (*domain.Credit, error) {
	c, err := scanCredit(s.queryRow(ctx, `SELECT `+creditColumns+` FROM credits c WHERE c.sale_id = ? ORDER BY c.id LIMIT 1`+s.forUpdate(), saleID))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("credit for sale #%d", saleID)
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateCredit(ctx context.Context, c domain.Credit) error {
	return s.execOne(ctx, store.NotFoundf("credit #%d", c.ID), `
		UPDATE credits SET amount = ?, amount_paid = ?, is_paid = ?, payment_date = ? WHERE id = ?
	`, money(c.Amount), money(c.AmountPaid), c.IsPaid, nullDate(c.PaymentDate), c.ID)
}

func (s *Store) DeleteCreditsBySale(ctx context.Context, saleID int64) error {
	_, err := s.exec(ctx, `DELETE FROM credits WHERE sale_id = ?`, saleID)
	return err
}

func (s *Store) ListCredits(ctx context.Context, pendingOnly bool) ([]domain.CreditLine, error) {
	query := `
		SELECT ` + creditColumns + `, sl.sale_date, COALESCE(sl.sku, ''), COALESCE(p.name, '')
		FROM credits c
		LEFT JOIN sales sl ON sl.id = c.sale_id
		LEFT JOIN products p ON p.sku = sl.sku`
	var args []any
	if pendingOnly {
		query += ` WHERE c.is_paid = ?`
		args = append(args, false)
	}
	query += ` ORDER BY c.issue_date, c.id`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.CreditLine, 0, 16)
	for rows.Next() {
		var (
			saleDate domain.Date
			sku      string
			name     string
		)
		c, err := scanCredit(rows, &saleDate, &sku, &name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.CreditLine{Credit: c, SaleDate: datePtr(saleDate), SKU: sku, ProductName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
