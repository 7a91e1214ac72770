package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

// RecordSale books a sale for today, takes the units out of stock and opens a
// credit when the sale is on credit. All writes share one transaction.
func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (id int64, err error) {
	defer func() { s.record(ctx, "sale_record", err) }()

	req.SKU = normalizeSKU(req.SKU)
	req.Customer = strings.TrimSpace(req.Customer)
	if err := s.check(req); err != nil {
		return 0, err
	}
	if req.PaymentMethod == domain.PaymentCredit && req.Customer == "" {
		return 0, store.Invalid("customer", "required for credit sales")
	}

	req.UnitPrice = domain.Money(req.UnitPrice)
	req.DiscountPct = domain.Money(req.DiscountPct)
	total := finance.SaleTotal(req.UnitPrice, req.Quantity, req.DiscountPct)
	if req.PaymentMethod == domain.PaymentCredit && !total.IsPositive() {
		return 0, store.Invalid("unit_price", "credit sales must have a positive total")
	}

	now := s.clock()
	sale := domain.Sale{
		Date:          domain.DateOf(now),
		Time:          now.Format("15:04:05"),
		SKU:           req.SKU,
		Quantity:      req.Quantity,
		UnitPrice:     req.UnitPrice,
		DiscountPct:   req.DiscountPct,
		Total:         total,
		PaymentMethod: req.PaymentMethod,
		Customer:      req.Customer,
		Seller:        strings.TrimSpace(req.Seller),
		Notes:         req.Notes,
	}

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		product, err := repo.GetProduct(ctx, sale.SKU)
		if err != nil {
			return err
		}
		if product.Stock < sale.Quantity {
			return &store.StockError{SKU: sale.SKU, Available: product.Stock, Requested: sale.Quantity}
		}
		if err := repo.DecreaseStock(ctx, sale.SKU, sale.Quantity); err != nil {
			return err
		}

		id, err = repo.CreateSale(ctx, sale)
		if err != nil {
			return asValidation("sale", err)
		}

		if sale.PaymentMethod == domain.PaymentCredit {
			saleID := id
			if _, err := repo.CreateCredit(ctx, domain.Credit{
				SaleID:    &saleID,
				Customer:  sale.Customer,
				Amount:    domain.Money(sale.Total),
				IssueDate: sale.Date,
				Notes:     sale.Notes,
			}); err != nil {
				return asValidation("credit", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("sale_id", id).Str("sku", sale.SKU).Int("qty", sale.Quantity).Str("total", sale.Total.String()).Str("method", string(sale.PaymentMethod)).Msg("sale recorded")
	return id, nil
}

// VoidSale reverses a sale: stock comes back, its credit is dropped and the
// sale row is deleted. A second void of the same id reports NotFound.
func (s *Service) VoidSale(ctx context.Context, id int64) (voided domain.Sale, err error) {
	defer func() { s.record(ctx, "sale_void", err) }()

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		sale, err := repo.GetSale(ctx, id)
		if err != nil {
			return err
		}
		if err := repo.IncreaseStock(ctx, sale.SKU, sale.Quantity); err != nil {
			return err
		}
		if err := repo.DeleteCreditsBySale(ctx, id); err != nil {
			return err
		}
		if err := repo.DeleteSale(ctx, id); err != nil {
			return err
		}
		voided = *sale
		return nil
	})
	if err != nil {
		return domain.Sale{}, err
	}

	log.Info().Int64("sale_id", id).Str("sku", voided.SKU).Int("qty", voided.Quantity).Msg("sale voided")
	return voided, nil
}

// EditSale changes price, payment method, seller or notes. A new price is
// re-totaled with the sale's own quantity and discount, and a credit sale's
// receivable follows the new total. Moving a sale into or out of Credit is
// refused; void and record it again instead. Stock is untouched.
func (s *Service) EditSale(ctx context.Context, id int64, req domain.SaleEditRequest) (err error) {
	if req.Empty() {
		return nil
	}
	defer func() { s.record(ctx, "sale_edit", err) }()

	if req.UnitPrice != nil && req.UnitPrice.IsNegative() {
		return store.Invalid("unit_price", "gte=0")
	}
	if req.PaymentMethod != nil && !req.PaymentMethod.Valid() {
		return store.Invalid("payment_method", "oneof=Cash Transfer Card Credit")
	}

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		sale, err := repo.GetSale(ctx, id)
		if err != nil {
			return err
		}

		if req.PaymentMethod != nil && *req.PaymentMethod != sale.PaymentMethod &&
			(*req.PaymentMethod == domain.PaymentCredit || sale.PaymentMethod == domain.PaymentCredit) {
			return store.Invalid("payment_method", "cannot move a sale into or out of Credit")
		}
		if req.UnitPrice != nil {
			sale.UnitPrice = domain.Money(*req.UnitPrice)
			sale.Total = finance.SaleTotal(sale.UnitPrice, sale.Quantity, sale.DiscountPct)
			if sale.PaymentMethod == domain.PaymentCredit {
				if err := s.resizeCredit(ctx, repo, sale.ID, sale.Total); err != nil {
					return err
				}
			}
		}
		if req.PaymentMethod != nil {
			sale.PaymentMethod = *req.PaymentMethod
		}
		if req.Seller != nil {
			sale.Seller = strings.TrimSpace(*req.Seller)
		}
		if req.Notes != nil {
			sale.Notes = *req.Notes
		}
		return asValidation("sale", repo.UpdateSale(ctx, *sale))
	})
}

// resizeCredit sets the receivable of a credit sale to total. The new total
// may not fall below what the customer already paid.
func (s *Service) resizeCredit(ctx context.Context, repo store.Repository, saleID int64, total decimal.Decimal) error {
	credit, err := repo.GetCreditBySale(ctx, saleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !total.IsPositive() {
		return store.Invalid("unit_price", "credit sales must have a positive total")
	}
	if total.LessThan(credit.AmountPaid) {
		return store.Invalid("unit_price", "total is below the amount already paid on the credit")
	}

	credit.Amount = domain.Money(total)
	credit.IsPaid = credit.AmountPaid.GreaterThanOrEqual(credit.Amount)
	if credit.IsPaid && credit.PaymentDate == nil {
		today := s.Today()
		credit.PaymentDate = &today
	}
	if !credit.IsPaid {
		credit.PaymentDate = nil
	}
	return asValidation("credit", repo.UpdateCredit(ctx, *credit))
}

func (s *Service) GetSale(ctx context.Context, id int64) (domain.Sale, error) {
	sale, err := s.repo.GetSale(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}
