package sqlstore

import (
	"context"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

const orderColumns = `id, order_date, supplier, COALESCE(description, ''), units, unit_cost, total, status, COALESCE(paid_by, ''), expected_date, COALESCE(notes, '')`

func scanOrder(row rowScanner) (domain.SupplierOrder, error) {
	var (
		o        domain.SupplierOrder
		expected domain.Date
	)
	if err := row.Scan(&o.ID, &o.OrderDate, &o.Supplier, &o.Description, &o.Units, &o.UnitCost, &o.Total, &o.Status, &o.PaidBy, &expected, &o.Notes); err != nil {
		return domain.SupplierOrder{}, err
	}
	o.ExpectedDate = datePtr(expected)
	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o domain.SupplierOrder) (int64, error) {
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	return s.insert(ctx, `
		INSERT INTO supplier_orders (order_date, supplier, description, units, unit_cost, total, status, paid_by, expected_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, o.OrderDate.String(), o.Supplier, nullIfEmpty(o.Description), o.Units, money(o.UnitCost), money(o.Total), string(o.Status),
		nullIfEmpty(o.PaidBy), nullDate(o.ExpectedDate), nullIfEmpty(o.Notes))
}

func (s *Store) GetOrder(ctx context.Context, id int64) (*domain.SupplierOrder, error) {
	o, err := scanOrder(s.queryRow(ctx, `SELECT `+orderColumns+` FROM supplier_orders WHERE id = ?`+s.forUpdate(), id))
	if err != nil {
		if isNoRows(err) {
			return nil, store.NotFoundf("order #%d", id)
		}
		return nil, err
	}
	return &o, nil
}

// UpdateOrder rewrites the editable fields. Status is only changed by
// TransitionOrder.
func (s *Store) UpdateOrder(ctx context.Context, o domain.SupplierOrder) error {
	return s.execOne(ctx, store.NotFoundf("order #%d", o.ID), `
		UPDATE supplier_orders
		SET supplier = ?, description = ?, units = ?, unit_cost = ?, total = ?, expected_date = ?, notes = ?
		WHERE id = ?
	`, o.Supplier, nullIfEmpty(o.Description), o.Units, money(o.UnitCost), money(o.Total), nullDate(o.ExpectedDate), nullIfEmpty(o.Notes), o.ID)
}

// TransitionOrder moves an order from one status to the next. It fails with
// a StateError when the order is not currently in the from status.
func (s *Store) TransitionOrder(ctx context.Context, id int64, from domain.OrderStatus, to domain.OrderStatus, paidBy string) error {
	res, err := s.exec(ctx, `
		UPDATE supplier_orders SET status = ?, paid_by = COALESCE(?, paid_by) WHERE id = ? AND status = ?
	`, string(to), nullIfEmpty(paidBy), id, string(from))
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

	current, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	return &store.StateError{Entity: "order", ID: id, Current: string(current.Status), Want: string(from)}
}

func (s *Store) DeleteOrder(ctx context.Context, id int64) error {
	return s.execOne(ctx, store.NotFoundf("order #%d", id), `DELETE FROM supplier_orders WHERE id = ?`, id)
}

func (s *Store) ListOrders(ctx context.Context, status domain.OrderStatus) ([]domain.SupplierOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM supplier_orders`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY order_date DESC, id DESC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.SupplierOrder, 0, 16)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
