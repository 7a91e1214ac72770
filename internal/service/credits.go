package service

import (
	"context"

	"github.com/shopspring/decimal"

	"orvann/backend/internal/domain"
	"orvann/backend/internal/finance"
	"orvann/backend/internal/store"
)

// PayCreditPartial books amount toward a credit. Overpayment settles the
// credit at exactly its amount; the excess is not tracked.
func (s *Service) PayCreditPartial(ctx context.Context, id int64, amount decimal.Decimal) (payment domain.CreditPayment, err error) {
	defer func() { s.record(ctx, "credit_partial_payment", err) }()

	err = s.repo.WithTx(ctx, func(repo store.Repository) error {
		credit, err := repo.GetCredit(ctx, id)
		if err != nil {
			return err
		}
		if credit.IsPaid {
			return store.ErrAlreadySettled
		}
		if !amount.IsPositive() {
			return store.Invalid("amount", "gt=0")
		}

		updated, p := finance.ApplyPayment(*credit, domain.Money(amount), s.Today())
		payment = p
		return repo.UpdateCredit(ctx, updated)
	})
	if err != nil {
		return domain.CreditPayment{}, err
	}
	return payment, nil
}

// PayCreditFull settles a credit on paymentDate, today when nil.
func (s *Service) PayCreditFull(ctx context.Context, id int64, paymentDate *domain.Date) (err error) {
	defer func() { s.record(ctx, "credit_full_payment", err) }()

	date := s.Today()
	if paymentDate != nil && !paymentDate.IsZero() {
		date = *paymentDate
	}

	return s.repo.WithTx(ctx, func(repo store.Repository) error {
		credit, err := repo.GetCredit(ctx, id)
		if err != nil {
			return err
		}
		credit.AmountPaid = credit.Amount
		credit.IsPaid = true
		credit.PaymentDate = &date
		return repo.UpdateCredit(ctx, *credit)
	})
}

func (s *Service) GetCredit(ctx context.Context, id int64) (domain.Credit, error) {
	c, err := s.repo.GetCredit(ctx, id)
	if err != nil {
		return domain.Credit{}, err
	}
	return *c, nil
}

func (s *Service) PendingCredits(ctx context.Context) ([]domain.CreditLine, error) {
	return s.repo.ListCredits(ctx, true)
}

func (s *Service) Credits(ctx context.Context) ([]domain.CreditLine, error) {
	return s.repo.ListCredits(ctx, false)
}
