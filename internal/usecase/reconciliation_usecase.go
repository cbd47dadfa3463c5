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

// ReconciliationUseCase checks recorded paid amounts against posted entries
type ReconciliationUseCase struct {
	entryRepo     LedgerEntryRepository
	vendorRepo    VendorPaymentRepository
	liabilityRepo LiabilityRepository
	salaryRepo    SalaryRepository
	metrics       *metrics.Metrics
	logger        zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(
	entryRepo LedgerEntryRepository,
	vendorRepo VendorPaymentRepository,
	liabilityRepo LiabilityRepository,
	salaryRepo SalaryRepository,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		entryRepo:     entryRepo,
		vendorRepo:    vendorRepo,
		liabilityRepo: liabilityRepo,
		salaryRepo:    salaryRepo,
		metrics:       metrics,
		logger:        logger.With().Str("component", "reconciliation").Logger(),
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	Kind           domain.ReferenceKind
	AccountID      string
	RecordedPaid   decimal.Decimal
	CalculatedPaid decimal.Decimal
	Difference     decimal.Decimal
	IsReconciled   bool
	LastChecked    time.Time
}

func newResult(kind domain.ReferenceKind, id string, recorded, calculated decimal.Decimal) *ReconciliationResult {
	diff := recorded.Sub(calculated)
	return &ReconciliationResult{
		Kind:           kind,
		AccountID:      id,
		RecordedPaid:   recorded,
		CalculatedPaid: calculated,
		Difference:     diff,
		IsReconciled:   diff.IsZero(),
		LastChecked:    time.Now().UTC(),
	}
}

// appliedTotal sums the entries whose balance update is in effect.
func (uc *ReconciliationUseCase) appliedTotal(ctx context.Context, ref domain.Reference) (decimal.Decimal, []*domain.LedgerEntry, error) {
	entries, err := uc.entryRepo.ListByReference(ctx, ref)
	if err != nil {
		return decimal.Zero, nil, err
	}

	total := decimal.Zero
	applied := make([]*domain.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Status.IsApplied() {
			total = total.Add(e.Amount)
			applied = append(applied, e)
		}
	}

	return total, applied, nil
}

// confirm runs check again when it reports a discrepancy. The account row
// and its entries are separate reads, so a posting committed between them
// looks like drift until both are read again.
func (uc *ReconciliationUseCase) confirm(ctx context.Context, check func(context.Context) (*ReconciliationResult, error)) (*ReconciliationResult, error) {
	result, err := check(ctx)
	if err != nil || result.IsReconciled {
		return result, err
	}

	again, err := check(ctx)
	if err != nil {
		return nil, err
	}
	if again.IsReconciled {
		uc.logger.Debug().
			Str("kind", string(result.Kind)).
			Str("account_id", result.AccountID).
			Str("difference", result.Difference.String()).
			Msg("discrepancy cleared on re-read")
	}
	return again, nil
}

// ReconcileVendorPayment recomputes a vendor payment's paid amount from its
// applied entries.
func (uc *ReconciliationUseCase) ReconcileVendorPayment(ctx context.Context, id string) (*ReconciliationResult, error) {
	return uc.confirm(ctx, func(ctx context.Context) (*ReconciliationResult, error) {
		account, err := uc.vendorRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		calculated, _, err := uc.appliedTotal(ctx, domain.VendorPaymentRef{PaymentID: id})
		if err != nil {
			return nil, err
		}

		return newResult(domain.ReferenceKindVendorPayment, id, account.PaidAmount, calculated), nil
	})
}

// ReconcileLiability recomputes a liability's paid amount from the opening
// paid amount plus its applied entries.
func (uc *ReconciliationUseCase) ReconcileLiability(ctx context.Context, id string) (*ReconciliationResult, error) {
	return uc.confirm(ctx, func(ctx context.Context) (*ReconciliationResult, error) {
		account, err := uc.liabilityRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		applied, _, err := uc.appliedTotal(ctx, domain.LiabilityRef{LiabilityID: id})
		if err != nil {
			return nil, err
		}

		return newResult(domain.ReferenceKindLiability, id, account.PaidAmount, account.OpeningPaid.Add(applied)), nil
	})
}

// ReconcileSalary checks a salary's Paid status against its applied entries.
// Recorded and calculated are the net salary when paid, zero otherwise.
func (uc *ReconciliationUseCase) ReconcileSalary(ctx context.Context, id string) (*ReconciliationResult, error) {
	return uc.confirm(ctx, func(ctx context.Context) (*ReconciliationResult, error) {
		record, err := uc.salaryRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		calculated, applied, err := uc.appliedTotal(ctx, domain.SalaryRef{SalaryID: id})
		if err != nil {
			return nil, err
		}

		recorded := decimal.Zero
		if record.PaymentStatus == domain.SalaryStatusPaid {
			recorded = record.NetSalary()
		}

		result := newResult(domain.ReferenceKindSalary, id, recorded, calculated)
		if result.IsReconciled && len(applied) == 1 && record.TransactionID != nil && *record.TransactionID != applied[0].ID {
			result.IsReconciled = false
		}

		return result, nil
	})
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalAccounts      int
	ReconciledAccounts int
	Discrepancies      []*ReconciliationResult
	CheckedAt          time.Time
}

func (r *ReconciliationReport) add(result *ReconciliationResult) {
	r.TotalAccounts++
	if result.IsReconciled {
		r.ReconciledAccounts++
		return
	}
	r.Discrepancies = append(r.Discrepancies, result)
}

// GenerateReconciliationReport reconciles every vendor payment, liability
// and salary record
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	report := &ReconciliationReport{
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	err := forEachPage(func(limit, offset int) (int, error) {
		accounts, err := uc.vendorRepo.List(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		for _, a := range accounts {
			result, err := uc.ReconcileVendorPayment(ctx, a.ID)
			if err != nil {
				return 0, fmt.Errorf("failed to reconcile vendor payment %s: %w", a.ID, err)
			}
			report.add(result)
		}
		return len(accounts), nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachPage(func(limit, offset int) (int, error) {
		accounts, err := uc.liabilityRepo.List(ctx, limit, offset)
		if err != nil {
			return 0, err
		}
		for _, a := range accounts {
			result, err := uc.ReconcileLiability(ctx, a.ID)
			if err != nil {
				return 0, fmt.Errorf("failed to reconcile liability %s: %w", a.ID, err)
			}
			report.add(result)
		}
		return len(accounts), nil
	})
	if err != nil {
		return nil, err
	}

	err = forEachPage(func(limit, offset int) (int, error) {
		records, err := uc.salaryRepo.List(ctx, domain.SalaryFilter{Limit: limit, Offset: offset})
		if err != nil {
			return 0, err
		}
		for _, s := range records {
			result, err := uc.ReconcileSalary(ctx, s.ID)
			if err != nil {
				return 0, fmt.Errorf("failed to reconcile salary %s: %w", s.ID, err)
			}
			report.add(result)
		}
		return len(records), nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		counts := map[domain.ReferenceKind]int{
			domain.ReferenceKindVendorPayment: 0,
			domain.ReferenceKindLiability:     0,
			domain.ReferenceKindSalary:        0,
		}
		for _, d := range report.Discrepancies {
			counts[d.Kind]++
		}
		for kind, n := range counts {
			uc.metrics.ReconciliationDiscrepancies.WithLabelValues(string(kind)).Set(float64(n))
		}
	}

	if len(report.Discrepancies) > 0 {
		uc.logger.Warn().
			Int("discrepancies", len(report.Discrepancies)).
			Int("total", report.TotalAccounts).
			Msg("reconciliation found discrepancies")
	}

	return report, nil
}

// forEachPage calls fetch with successive pages until a short page.
func forEachPage(fetch func(limit, offset int) (int, error)) error {
	offset := 0
	for {
		n, err := fetch(domain.MaxPageSize, offset)
		if err != nil {
			return err
		}
		if n < domain.MaxPageSize {
			return nil
		}
		offset += n
	}
}
