package sqlstore

import (
	"context"
	"database/sql"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const productColumns = `sku, name, category, size, color, cost, sale_price, stock, reorder_threshold, COALESCE(supplier, ''), COALESCE(notes, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.SKU, &p.Name, &p.Category, &p.Size, &p.Color, &p.Cost, &p.SalePrice, &p.Stock, &p.ReorderThreshold, &p.Supplier, &p.Notes)
	return p, err
}

func (s *Store) listProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY category, name`)
}

func (s *Store) ListLowStock(ctx context.Context) ([]domain.Product, error) {
	return s.listProducts(ctx, `SELECT `+productColumns+` FROM products WHERE stock <= reorder_threshold ORDER BY stock ASC, name`)
}

func (s *Store) GetProduct(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := scanProduct(s.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`+s.forUpdate(), sku))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("product %s", sku)
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := s.exec(ctx, `
		INSERT INTO products (sku, name, category, size, color, cost, sale_price, stock, reorder_threshold, supplier, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.SKU, p.Name, p.Category, p.Size, p.Color, money(p.Cost), money(p.SalePrice), p.Stock, p.ReorderThreshold, nullIfEmpty(p.Supplier), nullIfEmpty(p.Notes))
	return err
}

func (s *Store) UpdateProduct(ctx context.Context, p domain.Product) error {
	return s.execOne(ctx, store.NotFoundf("product %s", p.SKU), `
		UPDATE products
		SET name = ?, category = ?, size = ?, color = ?, cost = ?, sale_price = ?, stock = ?, reorder_threshold = ?, supplier = ?, notes = ?
		WHERE sku = ?
	`, p.Name, p.Category, p.Size, p.Color, money(p.Cost), money(p.SalePrice), p.Stock, p.ReorderThreshold, nullIfEmpty(p.Supplier), nullIfEmpty(p.Notes), p.SKU)
}

func (s *Store) DeleteProduct(ctx context.Context, sku string) error {
	return s.execOne(ctx, store.NotFoundf("product %s", sku), `DELETE FROM products WHERE sku = ?`, sku)
}

func (s *Store) IncreaseStock(ctx context.Context, sku string, qty int) error {
	return s.execOne(ctx, store.NotFoundf("product %s", sku), `UPDATE products SET stock = stock + ? WHERE sku = ?`, qty, sku)
}

// DecreaseStock only succeeds when enough units are on hand, so concurrent
// sales cannot take stock below zero.
func (s *Store) DecreaseStock(ctx context.Context, sku string, qty int) error {
	res, err := s.exec(ctx, `UPDATE products SET stock = stock - ? WHERE sku = ? AND stock >= ?`, qty, sku, qty)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	p, err := s.GetProduct(ctx, sku)
	if err != nil {
		return err
	}
	return &store.StockError{SKU: sku, Available: p.Stock, Requested: qty}
}

func (s *Store) CountSalesBySKU(ctx context.Context, sku string) (int, error) {
	var count sql.NullInt64
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM sales WHERE sku = ?`, sku).Scan(&count); err != nil {
		return 0, err
	}
	return int(count.Int64), nil
}
