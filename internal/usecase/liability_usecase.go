package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

// LiabilityUseCase manages loans and other payable obligations.
type LiabilityUseCase struct {
	txManager     TransactionManager
	liabilityRepo LiabilityRepository
	approvalRepo  ApprovalRepository
	sequences     SequenceGenerator
	policy        domain.InterestPolicy
	trail         trail
	retrier       Retrier
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

// NewLiabilityUseCase creates a new LiabilityUseCase. policy fixes how the
// total payable is derived from the principal.
func NewLiabilityUseCase(
	txManager TransactionManager,
	liabilityRepo LiabilityRepository,
	approvalRepo ApprovalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	sequences SequenceGenerator,
	idGen IDGenerator,
	policy domain.InterestPolicy,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LiabilityUseCase {
	return &LiabilityUseCase{
		txManager:     txManager,
		liabilityRepo: liabilityRepo,
		approvalRepo:  approvalRepo,
		sequences:     sequences,
		policy:        policy,
		trail:         newTrail(outboxRepo, auditRepo, idGen),
		retrier:       retrier,
		metrics:       metrics,
		logger:        logger.With().Str("component", "liabilities").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateLiabilityInput represents input for opening a liability.
type CreateLiabilityInput struct {
	Name         string
	Lender       string
	Principal    decimal.Decimal
	InterestType domain.InterestType
	InterestRate *decimal.Decimal
	PaidAmount   decimal.Decimal
	ApprovalID   string
}

// CreateLiability opens a liability backed by an Approved Liability request.
func (uc *LiabilityUseCase) CreateLiability(ctx context.Context, actor domain.Actor, input CreateLiabilityInput) (*domain.LiabilityAccount, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}
	if input.ApprovalID == "" {
		return nil, fmt.Errorf("%w: approval_id is required", domain.ErrApprovalRequired)
	}

	seq, err := uc.sequences.Next(ctx, SequenceLiability)
	if err != nil {
		return nil, fmt.Errorf("allocate liability id: %w", err)
	}
	id := fmt.Sprintf("LIA-%05d", seq)

	var created *domain.LiabilityAccount
	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		approval, err := uc.approvalRepo.GetByIDForUpdate(ctx, tx, input.ApprovalID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: approval %s does not exist", domain.ErrApprovalRequired, input.ApprovalID)
		}
		if err != nil {
			return err
		}

		now := uc.now()
		account, err := domain.NewLiabilityAccount(domain.NewLiabilityInput{
			ID:           id,
			Name:         input.Name,
			Lender:       input.Lender,
			Principal:    input.Principal,
			InterestType: input.InterestType,
			InterestRate: input.InterestRate,
			PaidAmount:   input.PaidAmount,
			Approval:     approval,
		}, uc.policy, now)
		if err != nil {
			return err
		}

		if err := uc.liabilityRepo.Create(ctx, tx, account); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionLiabilityCreate,
			domain.AggregateTypeLiability, account.ID, nil, domain.MarshalState(account), now); err != nil {
			return err
		}

		if err := uc.trail.emit(ctx, tx, domain.AggregateTypeLiability, account.ID, domain.EventTypeLiabilityOpened, map[string]any{
			"liability_id":  account.ID,
			"approval_id":   account.ApprovalID,
			"principal":     account.Principal.String(),
			"total_payable": account.TotalPayable.String(),
			"paid_amount":   account.PaidAmount.String(),
		}, now); err != nil {
			return err
		}

		created = account
		return nil
	})
	if err != nil {
		uc.logger.Warn().Err(err).Str("approval_id", input.ApprovalID).Msg("liability rejected")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.WithLabelValues(domain.AggregateTypeLiability).Inc()
	}

	uc.logger.Info().
		Str("liability_id", created.ID).
		Str("total_payable", created.TotalPayable.String()).
		Str("remaining", created.Remaining().String()).
		Msg("liability opened")

	return created, nil
}

// GetLiability retrieves a liability by ID.
func (uc *LiabilityUseCase) GetLiability(ctx context.Context, id string) (*domain.LiabilityAccount, error) {
	return uc.liabilityRepo.GetByID(ctx, id)
}

// ListLiabilities lists liabilities.
func (uc *LiabilityUseCase) ListLiabilities(ctx context.Context, limit, offset int) ([]*domain.LiabilityAccount, error) {
	limit, offset = domain.ValidatePagination(limit, offset)
	return uc.liabilityRepo.List(ctx, limit, offset)
}
