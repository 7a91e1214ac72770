package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const saleColumns = `id, sale_date, sale_time, sku, quantity, unit_price, discount_pct, total, payment_method, COALESCE(customer, ''), COALESCE(seller, ''), COALESCE(notes, '')`

func scanSale(row rowScanner, extra ...any) (domain.Sale, error) {
	var sale domain.Sale
	dest := []any{
		&sale.ID, &sale.Date, &sale.Time, &sale.SKU, &sale.Quantity, &sale.UnitPrice, &sale.DiscountPct,
		&sale.Total, &sale.PaymentMethod, &sale.Customer, &sale.Seller, &sale.Notes,
	}
	err := row.Scan(append(dest, extra...)...)
	return sale, err
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (int64, error) {
	return s.insert(ctx, `
		INSERT INTO sales (sale_date, sale_time, sku, quantity, unit_price, discount_pct, total, payment_method, customer, seller, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sale.Date.String(), sale.Time, sale.SKU, sale.Quantity, money(sale.UnitPrice), money(sale.DiscountPct), money(sale.Total),
		string(sale.PaymentMethod), nullIfEmpty(sale.Customer), nullIfEmpty(sale.Seller), nullIfEmpty(sale.Notes))
}

func (s *Store) GetSale(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := scanSale(s.queryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = ?`+s.forUpdate(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("sale #%d", id)
		}
		return nil, err
	}
	return &sale, nil
}

func (s *Store) UpdateSale(ctx context.Context, sale domain.Sale) error {
	return s.execOne(ctx, store.NotFoundf("sale #%d", sale.ID), `
		UPDATE sales
		SET unit_price = ?, total = ?, payment_method = ?, seller = ?, notes = ?
		WHERE id = ?
	`, money(sale.UnitPrice), money(sale.Total), string(sale.PaymentMethod), nullIfEmpty(sale.Seller), nullIfEmpty(sale.Notes), sale.ID)
}

func (s *Store) DeleteSale(ctx context.Context, id int64) error {
	return s.execOne(ctx, store.NotFoundf("sale #%d", id), `DELETE FROM sales WHERE id = ?`, id)
}

func (s *Store) ListSales(ctx context.Context, r store.Range) ([]domain.SaleLine, error) {
	where, args := rangeFilter("s.sale_date", r)
	rows, err := s.query(ctx, `
		SELECT s.id, s.sale_date, s.sale_time, s.sku, s.quantity, s.unit_price, s.discount_pct, s.total, s.payment_method,
		       COALESCE(s.customer, ''), COALESCE(s.seller, ''), COALESCE(s.notes, ''),
		       COALESCE(p.name, ''), p.cost
		FROM sales s
		LEFT JOIN products p ON p.sku = s.sku`+where+`
		ORDER BY s.sale_date DESC, s.sale_time DESC, s.id DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SaleLine, 0, 64)
	for rows.Next() {
		var (
			name string
			cost decimal.NullDecimal
		)
		sale, err := scanSale(rows, &name, &cost)
		if err != nil {
			return nil, err
		}
		line := domain.SaleLine{Sale: sale, ProductName: name}
		if cost.Valid {
			line.UnitCost = cost.Decimal
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
