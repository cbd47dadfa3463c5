package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
)

// LedgerUseCase handles the ledger entry lifecycle and the balance updates
// posting and cancelling apply to the referenced account.
type LedgerUseCase struct {
	txManager     TransactionManager
	entryRepo     LedgerEntryRepository
	approvalRepo  ApprovalRepository
	vendorRepo    VendorPaymentRepository
	liabilityRepo LiabilityRepository
	salaryRepo    SalaryRepository
	references    ReferenceDirectory
	entryIDs      IDGenerator
	trail         trail
	retrier       Retrier
	threshold     decimal.Decimal
	metrics       *metrics.Metrics
	logger        zerolog.Logger
	now           func() time.Time
}

// LedgerRepositories groups the repositories the ledger touches.
type LedgerRepositories struct {
	Entries        LedgerEntryRepository
	Approvals      ApprovalRepository
	VendorPayments VendorPaymentRepository
	Liabilities    LiabilityRepository
	Salaries       SalaryRepository
	Outbox         OutboxRepository
	Audit          AuditRepository
}

// NewLedgerUseCase creates a new LedgerUseCase. entryIDs issues TXN ids;
// idGen issues audit and outbox ids.
func NewLedgerUseCase(
	txManager TransactionManager,
	repos LedgerRepositories,
	references ReferenceDirectory,
	entryIDs IDGenerator,
	idGen IDGenerator,
	retrier Retrier,
	threshold decimal.Decimal,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:     txManager,
		entryRepo:     repos.Entries,
		approvalRepo:  repos.Approvals,
		vendorRepo:    repos.VendorPayments,
		liabilityRepo: repos.Liabilities,
		salaryRepo:    repos.Salaries,
		references:    references,
		entryIDs:      entryIDs,
		trail:         newTrail(repos.Outbox, repos.Audit, idGen),
		retrier:       retrier,
		threshold:     threshold,
		metrics:       metrics,
		logger:        logger.With().Str("component", "ledger").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateEntryInput represents input for creating a ledger entry.
type CreateEntryInput struct {
	Category      domain.EntryCategory
	Subtype       string
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	Narration     string
	PostingDate   *time.Time
	Reference     domain.Reference
	ApprovalID    *string
}

// CreateEntry records a Draft entry. Entries that need an approval are
// refused unless the approval is already Approved.
func (uc *LedgerUseCase) CreateEntry(ctx context.Context, actor domain.Actor, input CreateEntryInput) (*domain.LedgerEntry, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	now := uc.now()
	postingDate := now
	if input.PostingDate != nil {
		postingDate = input.PostingDate.UTC()
	}

	entry := &domain.LedgerEntry{
		ID:            uc.entryIDs.Generate(),
		Category:      input.Category,
		Subtype:       input.Subtype,
		Amount:        input.Amount,
		DebitAccount:  input.DebitAccount,
		CreditAccount: input.CreditAccount,
		Status:        domain.EntryStatusDraft,
		Narration:     input.Narration,
		PostingDate:   postingDate,
		Reference:     input.Reference,
		ApprovalID:    input.ApprovalID,
		CreatedBy:     actor.EmployeeID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.checkApproval(ctx, tx, entry); err != nil {
			return err
		}
		if err := uc.checkTargetExists(ctx, entry.Reference); err != nil {
			return err
		}

		if err := uc.entryRepo.Create(ctx, tx, entry); err != nil {
			return err
		}

		return uc.trail.audit(ctx, tx, actor, domain.AuditActionEntryCreate,
			domain.AggregateTypeEntry, entry.ID, nil, domain.MarshalState(entry), now)
	})
	if err != nil {
		uc.rejected("create", entry.ID, actor, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCreated.WithLabelValues(string(entry.Category)).Inc()
	}

	uc.logger.Info().
		Str("entry_id", entry.ID).
		Str("amount", entry.Amount.String()).
		Str("reference", referenceLabel(entry.Reference)).
		Msg("ledger entry drafted")

	return entry, nil
}

// UpdateDraftInput represents the editable fields of a draft entry.
type UpdateDraftInput struct {
	EntryID       string
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	Narration     string
}

// UpdateDraft edits a Draft entry. Raising the amount past the approval
// threshold re-applies the approval gate.
func (uc *LedgerUseCase) UpdateDraft(ctx context.Context, actor domain.Actor, input UpdateDraftInput) (*domain.LedgerEntry, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	var updated *domain.LedgerEntry
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, input.EntryID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(entry)
		now := uc.now()

		if err := entry.UpdateDraft(input.Amount, input.DebitAccount, input.CreditAccount, input.Narration, now); err != nil {
			return err
		}
		if err := uc.checkApproval(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionEntryUpdate,
			domain.AggregateTypeEntry, entry.ID, before, domain.MarshalState(entry), now); err != nil {
			return err
		}

		updated = entry
		return nil
	})
	if err != nil {
		uc.rejected("update", input.EntryID, actor, err)
		return nil, err
	}

	return updated, nil
}

// PostEntry applies a Draft entry's amount to its target account. The entry
// row is locked first, then the approval, then the target, and the balance
// update and status change commit together.
func (uc *LedgerUseCase) PostEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var posted *domain.LedgerEntry
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}
		if entry.Status != domain.EntryStatusDraft {
			return fmt.Errorf("%w: entry %s is %s, only drafts can be posted", domain.ErrInvalidTransition, entry.ID, entry.Status)
		}

		if err := uc.checkApproval(ctx, tx, entry); err != nil {
			return err
		}

		before := domain.MarshalState(entry)
		now := uc.now()

		settled, err := uc.moveTarget(ctx, tx, entry, true, now)
		if err != nil {
			return err
		}

		if err := entry.MarkPosted(settled, now); err != nil {
			return err
		}
		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionEntryPost,
			domain.AggregateTypeEntry, entry.ID, before, domain.MarshalState(entry), now); err != nil {
			return err
		}

		if err := uc.trail.emit(ctx, tx, domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryPosted,
			entryPayload(entry), now); err != nil {
			return err
		}

		posted = entry
		return nil
	})
	if err != nil {
		uc.rejected("post", entryID, actor, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesPosted.WithLabelValues(referenceLabel(posted.Reference)).Inc()
		uc.metrics.PostDuration.Observe(time.Since(start).Seconds())
		amount, _ := posted.Amount.Float64()
		uc.metrics.EntryAmount.Observe(amount)
	}

	uc.logger.Info().
		Str("entry_id", posted.ID).
		Str("status", string(posted.Status)).
		Str("reference", referenceLabel(posted.Reference)).
		Str("amount", posted.Amount.String()).
		Msg("ledger entry posted")

	return posted, nil
}

// CompleteEntry finalises a Posted or PartiallyPaid entry.
func (uc *LedgerUseCase) CompleteEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	var completed *domain.LedgerEntry
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(entry)
		now := uc.now()

		if err := entry.MarkCompleted(now); err != nil {
			return err
		}
		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionEntryComplete,
			domain.AggregateTypeEntry, entry.ID, before, domain.MarshalState(entry), now); err != nil {
			return err
		}

		if err := uc.trail.emit(ctx, tx, domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryCompleted,
			entryPayload(entry), now); err != nil {
			return err
		}

		completed = entry
		return nil
	})
	if err != nil {
		uc.rejected("complete", entryID, actor, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCompleted.Inc()
	}

	uc.logger.Info().Str("entry_id", completed.ID).Msg("ledger entry completed")

	return completed, nil
}

// CancelEntry cancels a Draft entry, or a Posted/PartiallyPaid entry after
// reversing its balance update with the exact negated amount.
func (uc *LedgerUseCase) CancelEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	var (
		cancelled *domain.LedgerEntry
		reversed  bool
	)
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		entry, err := uc.entryRepo.GetByIDForUpdate(ctx, tx, entryID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(entry)
		now := uc.now()

		wasApplied, err := entry.MarkCancelled(now)
		if err != nil {
			return err
		}

		if wasApplied {
			if _, err := uc.moveTarget(ctx, tx, entry, false, now); err != nil {
				return err
			}
		}

		if err := uc.entryRepo.Update(ctx, tx, entry); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionEntryCancel,
			domain.AggregateTypeEntry, entry.ID, before, domain.MarshalState(entry), now); err != nil {
			return err
		}

		payload := entryPayload(entry)
		payload["reversed"] = wasApplied
		if err := uc.trail.emit(ctx, tx, domain.AggregateTypeEntry, entry.ID, domain.EventTypeEntryCancelled, payload, now); err != nil {
			return err
		}

		cancelled = entry
		reversed = wasApplied
		return nil
	})
	if err != nil {
		uc.rejected("cancel", entryID, actor, err)
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.EntriesCancelled.WithLabelValues(strconv.FormatBool(reversed)).Inc()
	}

	uc.logger.Info().
		Str("entry_id", cancelled.ID).
		Bool("reversed", reversed).
		Msg("ledger entry cancelled")

	return cancelled, nil
}

// GetEntry retrieves a ledger entry by ID.
func (uc *LedgerUseCase) GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return uc.entryRepo.GetByID(ctx, id)
}

// ListEntries lists ledger entries matching filter.
func (uc *LedgerUseCase) ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.LedgerEntry, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.entryRepo.List(ctx, filter)
}

// checkApproval enforces the approval gate. An approval id given on an entry
// that would not need one must still point at an Approved request.
func (uc *LedgerUseCase) checkApproval(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error {
	if entry.ApprovalID == nil {
		if entry.RequiresApproval(uc.threshold) {
			return entry.CheckApproval(nil)
		}
		return nil
	}

	approval, err := uc.approvalRepo.GetByIDForUpdate(ctx, tx, *entry.ApprovalID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: approval %s does not exist", domain.ErrApprovalRequired, *entry.ApprovalID)
	}
	if err != nil {
		return err
	}

	return entry.CheckApproval(approval)
}

// checkTargetExists verifies the reference points at an existing record.
func (uc *LedgerUseCase) checkTargetExists(ctx context.Context, ref domain.Reference) error {
	var err error
	switch r := ref.(type) {
	case nil:
		return nil
	case domain.VendorPaymentRef:
		_, err = uc.vendorRepo.GetByID(ctx, r.PaymentID)
	case domain.LiabilityRef:
		_, err = uc.liabilityRepo.GetByID(ctx, r.LiabilityID)
	case domain.SalaryRef:
		_, err = uc.salaryRepo.GetByID(ctx, r.SalaryID)
	default:
		err = uc.checkExternalTarget(ctx, ref)
	}
	return targetError(ref, err)
}

func (uc *LedgerUseCase) checkExternalTarget(ctx context.Context, ref domain.Reference) error {
	if uc.references == nil {
		return nil
	}

	ok, err := uc.references.Exists(ctx, ref.Kind(), ref.TargetID())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// moveTarget applies (apply=true) or reverses the entry amount on its
// target under a row lock. settled reports whether the target has nothing
// left outstanding afterwards.
func (uc *LedgerUseCase) moveTarget(ctx context.Context, tx Transaction, entry *domain.LedgerEntry, apply bool, now time.Time) (settled bool, err error) {
	switch ref := entry.Reference.(type) {
	case nil:
		return true, nil

	case domain.VendorPaymentRef:
		account, err := uc.vendorRepo.GetByIDForUpdate(ctx, tx, ref.PaymentID)
		if err != nil {
			return false, targetError(ref, err)
		}
		if apply {
			err = account.ApplyPayment(entry.Amount, now)
		} else {
			err = account.ReversePayment(entry.Amount, now)
		}
		if err != nil {
			return false, err
		}
		if err := uc.vendorRepo.Update(ctx, tx, account); err != nil {
			return false, err
		}
		return account.IsSettled(), nil

	case domain.LiabilityRef:
		account, err := uc.liabilityRepo.GetByIDForUpdate(ctx, tx, ref.LiabilityID)
		if err != nil {
			return false, targetError(ref, err)
		}
		if apply {
			err = account.ApplyPayment(entry.Amount, now)
		} else {
			err = account.ReversePayment(entry.Amount, now)
		}
		if err != nil {
			return false, err
		}
		if err := uc.liabilityRepo.Update(ctx, tx, account); err != nil {
			return false, err
		}
		return account.IsSettled(), nil

	case domain.SalaryRef:
		record, err := uc.salaryRepo.GetByIDForUpdate(ctx, tx, ref.SalaryID)
		if err != nil {
			return false, targetError(ref, err)
		}
		if apply {
			err = record.ApplyPayment(entry.ID, entry.Amount, now)
		} else {
			err = record.ReversePayment(entry.ID, entry.Amount, now)
		}
		if err != nil {
			return false, err
		}
		if err := uc.salaryRepo.Update(ctx, tx, record); err != nil {
			return false, err
		}
		return true, nil

	default:
		// Asset, service and customer payment balances live outside this
		// core; only their existence is checked.
		if apply {
			if err := targetError(ref, uc.checkExternalTarget(ctx, ref)); err != nil {
				return false, err
			}
		}
		return true, nil
	}
}

func targetError(ref domain.Reference, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", domain.ErrReferenceTargetMissing, ref.Kind(), ref.TargetID())
	}
	return err
}

func (uc *LedgerUseCase) rejected(operation, entryID string, actor domain.Actor, err error) {
	if uc.metrics != nil {
		uc.metrics.EntryErrors.WithLabelValues(operation, metrics.ErrorType(err)).Inc()
	}

	uc.logger.Warn().Err(err).
		Str("operation", operation).
		Str("entry_id", entryID).
		Str("actor_id", actor.EmployeeID).
		Msg("ledger operation rejected")
}

func referenceLabel(ref domain.Reference) string {
	if ref == nil {
		return "none"
	}
	return string(ref.Kind())
}

func entryPayload(entry *domain.LedgerEntry) map[string]any {
	payload := map[string]any{
		"entry_id":       entry.ID,
		"status":         string(entry.Status),
		"amount":         entry.Amount.String(),
		"debit_account":  entry.DebitAccount,
		"credit_account": entry.CreditAccount,
	}
	if entry.Reference != nil {
		payload["reference_type"] = string(entry.Reference.Kind())
		payload["reference_id"] = entry.Reference.TargetID()
	}
	return payload
}
