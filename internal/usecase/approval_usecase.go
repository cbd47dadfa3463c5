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

// Approver is a selectable approver for a requester.
type Approver struct {
	EmployeeID string
	Label      string
}

// ApprovalUseCase resolves who may approve a request and drives approval
// decisions.
type ApprovalUseCase struct {
	txManager    TransactionManager
	approvalRepo ApprovalRepository
	directory    EmployeeDirectory
	sequences    SequenceGenerator
	trail        trail
	retrier      Retrier
	holdTTL      time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
}

// NewApprovalUseCase creates a new ApprovalUseCase. A zero holdTTL disables
// stale hold reporting.
func NewApprovalUseCase(
	txManager TransactionManager,
	approvalRepo ApprovalRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	directory EmployeeDirectory,
	sequences SequenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
	holdTTL time.Duration,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ApprovalUseCase {
	return &ApprovalUseCase{
		txManager:    txManager,
		approvalRepo: approvalRepo,
		directory:    directory,
		sequences:    sequences,
		trail:        newTrail(outboxRepo, auditRepo, idGen),
		retrier:      retrier,
		holdTTL:      holdTTL,
		metrics:      metrics,
		logger:       logger.With().Str("component", "approvals").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// EligibleApprovers lists active employees exactly one level above the
// requester. An empty result is not an error.
func (uc *ApprovalUseCase) EligibleApprovers(ctx context.Context, requesterID string) ([]Approver, error) {
	requester, err := uc.directory.LookupEmployee(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	candidates, err := uc.directory.ListByLevel(ctx, requester.Level+1)
	if err != nil {
		return nil, err
	}

	approvers := make([]Approver, 0, len(candidates))
	for _, emp := range candidates {
		if !emp.Active || emp.ID == requester.ID {
			continue
		}
		approvers = append(approvers, Approver{
			EmployeeID: emp.ID,
			Label:      approverLabel(emp),
		})
	}

	return approvers, nil
}

func approverLabel(emp *domain.Employee) string {
	if emp.Role == "" {
		return emp.Name
	}
	return fmt.Sprintf("%s (%s)", emp.Name, emp.Role)
}

// CreateApprovalInput represents input for creating an approval request.
type CreateApprovalInput struct {
	Category      domain.ApprovalCategory
	ApproverID    string
	MinExpense    decimal.Decimal
	MaxExpense    decimal.Decimal
	Priority      domain.Priority
	TentativeDate time.Time
	Reason        string
}

// CreateApproval opens a Pending request on behalf of actor.
func (uc *ApprovalUseCase) CreateApproval(ctx context.Context, actor domain.Actor, input CreateApprovalInput) (*domain.ApprovalRequest, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	now := uc.now()
	approval := &domain.ApprovalRequest{
		Category:      input.Category,
		RequesterID:   actor.EmployeeID,
		ApproverID:    input.ApproverID,
		MinExpense:    input.MinExpense,
		MaxExpense:    input.MaxExpense,
		Priority:      input.Priority,
		TentativeDate: input.TentativeDate,
		Reason:        input.Reason,
		Status:        domain.ApprovalStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := approval.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkApprover(ctx, actor.EmployeeID, input.ApproverID); err != nil {
		return nil, err
	}

	seq, err := uc.sequences.Next(ctx, SequenceApproval)
	if err != nil {
		return nil, fmt.Errorf("allocate approval id: %w", err)
	}
	approval.ID = fmt.Sprintf("APP-%05d", seq)

	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.approvalRepo.Create(ctx, tx, approval); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionApprovalCreate,
			domain.AggregateTypeApproval, approval.ID, nil, domain.MarshalState(approval), now); err != nil {
			return err
		}

		return uc.trail.emit(ctx, tx, domain.AggregateTypeApproval, approval.ID, domain.EventTypeApprovalCreated, map[string]any{
			"approval_id":  approval.ID,
			"category":     string(approval.Category),
			"requester_id": approval.RequesterID,
			"approver_id":  approval.ApproverID,
			"max_expense":  approval.MaxExpense.String(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalsCreated.WithLabelValues(string(approval.Category)).Inc()
	}

	uc.logger.Info().
		Str("approval_id", approval.ID).
		Str("requester_id", approval.RequesterID).
		Str("approver_id", approval.ApproverID).
		Msg("approval request created")

	return approval, nil
}

func (uc *ApprovalUseCase) checkApprover(ctx context.Context, requesterID, approverID string) error {
	eligible, err := uc.EligibleApprovers(ctx, requesterID)
	if err != nil {
		return err
	}

	if len(eligible) == 0 {
		return domain.NewFieldError("approver_id", "requester has no eligible approver")
	}

	for _, a := range eligible {
		if a.EmployeeID == approverID {
			return nil
		}
	}

	return domain.NewFieldError("approver_id", fmt.Sprintf("%s is not an eligible approver", approverID))
}

// DecideInput represents an approver's decision.
type DecideInput struct {
	ApprovalID string
	Action     domain.ApprovalAction
	Note       string
}

// Decide applies an accept, reject or hold decision. The approval row is
// locked, so of two racing decisions the second sees the first's outcome.
func (uc *ApprovalUseCase) Decide(ctx context.Context, actor domain.Actor, input DecideInput) (*domain.ApprovalRequest, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	var decided *domain.ApprovalRequest
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		approval, err := uc.approvalRepo.GetByIDForUpdate(ctx, tx, input.ApprovalID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(approval)
		now := uc.now()

		if err := approval.Decide(actor, input.Action, input.Note, now); err != nil {
			return err
		}

		if err := uc.approvalRepo.Update(ctx, tx, approval); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionApprovalDecide,
			domain.AggregateTypeApproval, approval.ID, before, domain.MarshalState(approval), now); err != nil {
			return err
		}

		if err := uc.trail.emit(ctx, tx, domain.AggregateTypeApproval, approval.ID, domain.EventTypeApprovalDecided, map[string]any{
			"approval_id": approval.ID,
			"status":      string(approval.Status),
			"decided_by":  approval.DecidedBy,
			"note":        approval.DecisionNote,
		}, now); err != nil {
			return err
		}

		decided = approval
		return nil
	})
	if err != nil {
		uc.logger.Warn().Err(err).
			Str("approval_id", input.ApprovalID).
			Str("actor_id", actor.EmployeeID).
			Str("action", string(input.Action)).
			Msg("approval decision rejected")
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ApprovalDecisions.WithLabelValues(string(decided.Status)).Inc()
	}

	uc.logger.Info().
		Str("approval_id", decided.ID).
		Str("status", string(decided.Status)).
		Str("decided_by", decided.DecidedBy).
		Msg("approval decided")

	return decided, nil
}

// GetApproval retrieves an approval request by ID.
func (uc *ApprovalUseCase) GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return uc.approvalRepo.GetByID(ctx, id)
}

// ListApprovals lists approval requests matching filter.
func (uc *ApprovalUseCase) ListApprovals(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.approvalRepo.List(ctx, filter)
}

// ListStaleHolds reports OnHold requests that have waited longer than the
// configured hold TTL. Nothing is decided automatically.
func (uc *ApprovalUseCase) ListStaleHolds(ctx context.Context) ([]*domain.ApprovalRequest, error) {
	if uc.holdTTL <= 0 {
		return []*domain.ApprovalRequest{}, nil
	}

	held, err := uc.approvalRepo.List(ctx, domain.ApprovalFilter{
		Status: domain.ApprovalStatusOnHold,
		Limit:  domain.MaxPageSize,
	})
	if err != nil {
		return nil, err
	}

	now := uc.now()
	stale := make([]*domain.ApprovalRequest, 0, len(held))
	for _, a := range held {
		if a.IsStaleHold(uc.holdTTL, now) {
			stale = append(stale, a)
		}
	}

	return stale, nil
}
