package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

// VendorPaymentUseCase manages amounts owed to vendors.
type VendorPaymentUseCase struct {
	txManager  TransactionManager
	vendorRepo VendorPaymentRepository
	sequences  SequenceGenerator
	trail      trail
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewVendorPaymentUseCase creates a new VendorPaymentUseCase.
func NewVendorPaymentUseCase(
	txManager TransactionManager,
	vendorRepo VendorPaymentRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	sequences SequenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *VendorPaymentUseCase {
	return &VendorPaymentUseCase{
		txManager:  txManager,
		vendorRepo: vendorRepo,
		sequences:  sequences,
		trail:      newTrail(outboxRepo, auditRepo, idGen),
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger.With().Str("component", "vendor_payments").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateVendorPaymentInput represents input for opening a vendor payment.
type CreateVendorPaymentInput struct {
	VendorID               string
	Currency               string
	AmountInVendorCurrency decimal.Decimal
	ExchangeRateToINR      decimal.Decimal
	DueDate                time.Time
}

// CreateVendorPayment opens an unpaid vendor payment account.
func (uc *VendorPaymentUseCase) CreateVendorPayment(ctx context.Context, actor domain.Actor, input CreateVendorPaymentInput) (*domain.VendorPaymentAccount, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	now := uc.now()
	account, err := domain.NewVendorPaymentAccount("", input.VendorID, input.Currency,
		input.AmountInVendorCurrency, input.ExchangeRateToINR, input.DueDate, now)
	if err != nil {
		return nil, err
	}

	seq, err := uc.sequences.Next(ctx, SequenceVendorPayment)
	if err != nil {
		return nil, fmt.Errorf("allocate vendor payment id: %w", err)
	}
	account.ID = fmt.Sprintf("VPY-%05d", seq)

	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.vendorRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionVendorPaymentCreate,
			domain.AggregateTypeVendorPayment, account.ID, nil, domain.MarshalState(account), now); err != nil {
			return err
		}

		return uc.trail.emit(ctx, tx, domain.AggregateTypeVendorPayment, account.ID, domain.EventTypeVendorPaymentOpened, map[string]any{
			"payment_id": account.ID,
			"vendor_id":  account.VendorID,
			"currency":   account.Currency,
			"amount_inr": account.AmountINR().String(),
			"due_date":   account.DueDate.Format(time.DateOnly),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.WithLabelValues(domain.AggregateTypeVendorPayment).Inc()
	}

	uc.logger.Info().
		Str("payment_id", account.ID).
		Str("vendor_id", account.VendorID).
		Str("amount_inr", account.AmountINR().String()).
		Msg("vendor payment opened")

	return account, nil
}

// UpdateConversionInput changes the vendor-currency amount and/or rate.
// Nil fields keep their current value.
type UpdateConversionInput struct {
	PaymentID              string
	AmountInVendorCurrency *decimal.Decimal
	ExchangeRateToINR      *decimal.Decimal
}

// UpdateConversion recomputes the INR amount from new inputs. The paid
// amount never changes; a total below it is refused.
func (uc *VendorPaymentUseCase) UpdateConversion(ctx context.Context, actor domain.Actor, input UpdateConversionInput) (*domain.VendorPaymentAccount, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	var updated *domain.VendorPaymentAccount
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		account, err := uc.vendorRepo.GetByIDForUpdate(ctx, tx, input.PaymentID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(account)
		now := uc.now()

		amount := account.AmountInVendorCurrency
		if input.AmountInVendorCurrency != nil {
			amount = *input.AmountInVendorCurrency
		}
		rate := account.ExchangeRateToINR
		if input.ExchangeRateToINR != nil {
			rate = *input.ExchangeRateToINR
		}

		if err := account.SetConversion(amount, rate, now); err != nil {
			return err
		}
		if err := uc.vendorRepo.Update(ctx, tx, account); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionVendorPaymentRate,
			domain.AggregateTypeVendorPayment, account.ID, before, domain.MarshalState(account), now); err != nil {
			return err
		}

		updated = account
		return nil
	})
	if err != nil {
		uc.logger.Warn().Err(err).Str("payment_id", input.PaymentID).Msg("conversion update rejected")
		return nil, err
	}

	uc.logger.Info().
		Str("payment_id", updated.ID).
		Str("rate", updated.ExchangeRateToINR.String()).
		Str("amount_inr", updated.AmountINR().String()).
		Msg("vendor payment conversion updated")

	return updated, nil
}

// GetVendorPayment retrieves a vendor payment account by ID.
func (uc *VendorPaymentUseCase) GetVendorPayment(ctx context.Context, id string) (*domain.VendorPaymentAccount, error) {
	return uc.vendorRepo.GetByID(ctx, id)
}

// ListVendorPayments lists vendor payment accounts.
func (uc *VendorPaymentUseCase) ListVendorPayments(ctx context.Context, limit, offset int) ([]*domain.VendorPaymentAccount, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.vendorRepo.List(ctx, limit, offset)
}
