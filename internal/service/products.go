package service

import (
	"context"
	"fmt"
	"strings"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/store"
)

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, sku string) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, normalizeSKU(sku))
	if err != nil {
		return domain.Product{}, err
	}
	return *p, nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (product domain.Product, err error) {
	defer func() { s.record(ctx, "product_create", err) }()

	req.SKU = normalizeSKU(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := s.check(req); err != nil {
		return domain.Product{}, err
	}

	threshold := domain.DefaultReorderThreshold
	if req.ReorderThreshold != nil {
		if *req.ReorderThreshold < 0 {
			return domain.Product{}, store.Invalid("reorder_threshold", "gte=0")
		}
		threshold = *req.ReorderThreshold
	}

	product = domain.Product{
		SKU:              req.SKU,
		Name:             req.Name,
		Category:         req.Category,
		Size:             strings.TrimSpace(req.Size),
		Color:            strings.TrimSpace(req.Color),
		Cost:             domain.Money(req.Cost),
		SalePrice:        domain.Money(req.SalePrice),
		Stock:            req.Stock,
		ReorderThreshold: threshold,
		Supplier:         strings.TrimSpace(req.Supplier),
		Notes:            req.Notes,
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return domain.Product{}, asValidation("product", err)
	}
	return product, nil
}

// UpdateProduct edits any product field except the sku, stock included.
func (s *Service) UpdateProduct(ctx context.Context, sku string, req domain.ProductUpdateRequest) (product domain.Product, err error) {
	defer func() { s.record(ctx, "product_update", err) }()

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		existing, err := repo.GetProduct(ctx, normalizeSKU(sku))
		if err != nil {
			return err
		}

		if req.Name != nil {
			if strings.TrimSpace(*req.Name) == "" {
				return store.Invalid("name", "required")
			}
			existing.Name = strings.TrimSpace(*req.Name)
		}
		if req.Category != nil {
			existing.Category = strings.TrimSpace(*req.Category)
		}
		if req.Size != nil {
			existing.Size = strings.TrimSpace(*req.Size)
		}
		if req.Color != nil {
			existing.Color = strings.TrimSpace(*req.Color)
		}
		if req.Cost != nil {
			if req.Cost.IsNegative() {
				return store.Invalid("cost", "gte=0")
			}
			existing.Cost = domain.Money(*req.Cost)
		}
		if req.SalePrice != nil {
			if req.SalePrice.IsNegative() {
				return store.Invalid("sale_price", "gte=0")
			}
			existing.SalePrice = domain.Money(*req.SalePrice)
		}
		if req.Stock != nil {
			if *req.Stock < 0 {
				return store.Invalid("stock", "gte=0")
			}
			existing.Stock = *req.Stock
		}
		if req.ReorderThreshold != nil {
			if *req.ReorderThreshold < 0 {
				return store.Invalid("reorder_threshold", "gte=0")
			}
			existing.ReorderThreshold = *req.ReorderThreshold
		}
		if req.Supplier != nil {
			existing.Supplier = strings.TrimSpace(*req.Supplier)
		}
		if req.Notes != nil {
			existing.Notes = *req.Notes
		}

		if err := repo.UpdateProduct(ctx, *existing); err != nil {
			return asValidation("product", err)
		}
		product = *existing
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

// DeleteProduct refuses to delete a product that has sales history.
func (s *Service) DeleteProduct(ctx context.Context, sku string) (err error) {
	defer func() { s.record(ctx, "product_delete", err) }()
	sku = normalizeSKU(sku)

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		count, err := repo.CountSalesBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%s has %d sales: %w", sku, count, store.ErrHasDependentSales)
		}
		return repo.DeleteProduct(ctx, sku)
	})
}

// AddStock is the stock-increment primitive used outside order receipts.
func (s *Service) AddStock(ctx context.Context, sku string, qty int) (err error) {
	defer func() { s.record(ctx, "product_add_stock", err) }()

	if qty <= 0 {
		return store.Invalid("quantity", "gt=0")
	}
	return s.repo.IncreaseStock(ctx, normalizeSKU(sku), qty)
}

type ImportResult struct {
	Created []string          `json:"created"`
	Skipped map[string]string `json:"skipped"`
}

// ImportProducts creates each product independently. Rows that fail, such as
// an existing sku, are reported per sku and do not stop the import.
func (s *Service) ImportProducts(ctx context.Context, reqs []domain.ProductCreateRequest) ImportResult {
	result := ImportResult{Created: []string{}, Skipped: map[string]string{}}
	for i, req := range reqs {
		product, err := s.CreateProduct(ctx, req)
		if err != nil {
			key := normalizeSKU(req.SKU)
			if key == "" {
				key = fmt.Sprintf("row %d", i+1)
			}
			result.Skipped[key] = err.Error()
			continue
		}
		result.Created = append(result.Created, product.SKU)
	}
	return result
}
