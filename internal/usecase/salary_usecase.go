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

// SalaryUseCase manages monthly salary records.
type SalaryUseCase struct {
	txManager  TransactionManager
	salaryRepo SalaryRepository
	directory  EmployeeDirectory
	sequences  SequenceGenerator
	trail      trail
	retrier    Retrier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
}

// NewSalaryUseCase creates a new SalaryUseCase.
func NewSalaryUseCase(
	txManager TransactionManager,
	salaryRepo SalaryRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	directory EmployeeDirectory,
	sequences SequenceGenerator,
	idGen IDGenerator,
	retrier Retrier,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
) *SalaryUseCase {
	return &SalaryUseCase{
		txManager:  txManager,
		salaryRepo: salaryRepo,
		directory:  directory,
		sequences:  sequences,
		trail:      newTrail(outboxRepo, auditRepo, idGen),
		retrier:    retrier,
		metrics:    metrics,
		logger:     logger.With().Str("component", "salaries").Logger(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SalaryComponentsInput carries base, bonus and deduction. Bonus and
// deduction default to zero.
type SalaryComponentsInput struct {
	Base      decimal.Decimal
	Bonus     decimal.Decimal
	Deduction decimal.Decimal
}

func (in SalaryComponentsInput) components() domain.SalaryComponents {
	return domain.SalaryComponents{Base: in.Base, Bonus: in.Bonus, Deduction: in.Deduction}
}

// CreateSalaryInput represents input for recording a salary.
type CreateSalaryInput struct {
	EmployeeID string
	PayMonth   time.Time
	SalaryComponentsInput
}

// CreateSalary records a Pending salary for a known employee.
func (uc *SalaryUseCase) CreateSalary(ctx context.Context, actor domain.Actor, input CreateSalaryInput) (*domain.SalaryRecord, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	now := uc.now()
	record, err := domain.NewSalaryRecord("", input.EmployeeID, input.components(), input.PayMonth, now)
	if err != nil {
		return nil, err
	}

	if _, err := uc.directory.LookupEmployee(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	seq, err := uc.sequences.Next(ctx, SalarySequence(record.PayMonth))
	if err != nil {
		return nil, fmt.Errorf("allocate salary id: %w", err)
	}
	record.ID = fmt.Sprintf("SAL%s%03d", record.PayMonth.Format("200601"), seq)

	err = runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		if err := uc.salaryRepo.Create(ctx, tx, record); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionSalaryCreate,
			domain.AggregateTypeSalary, record.ID, nil, domain.MarshalState(record), now); err != nil {
			return err
		}

		return uc.trail.emit(ctx, tx, domain.AggregateTypeSalary, record.ID, domain.EventTypeSalaryCreated, map[string]any{
			"salary_id":   record.ID,
			"employee_id": record.EmployeeID,
			"pay_month":   record.PayMonth.Format("2006-01"),
			"net_salary":  record.NetSalary().String(),
		}, now)
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsOpened.WithLabelValues(domain.AggregateTypeSalary).Inc()
	}

	uc.logger.Info().
		Str("salary_id", record.ID).
		Str("employee_id", record.EmployeeID).
		Str("net_salary", record.NetSalary().String()).
		Msg("salary recorded")

	return record, nil
}

// UpdateSalaryComponents replaces the components of an unpaid salary; the
// net is recomputed from them.
func (uc *SalaryUseCase) UpdateSalaryComponents(ctx context.Context, actor domain.Actor, salaryID string, input SalaryComponentsInput) (*domain.SalaryRecord, error) {
	return uc.mutate(ctx, actor, salaryID, func(record *domain.SalaryRecord, now time.Time) error {
		return record.UpdateComponents(input.components(), now)
	})
}

// MarkInProcess flags a Pending salary as queued for payout.
func (uc *SalaryUseCase) MarkInProcess(ctx context.Context, actor domain.Actor, salaryID string) (*domain.SalaryRecord, error) {
	return uc.mutate(ctx, actor, salaryID, func(record *domain.SalaryRecord, now time.Time) error {
		return record.MarkInProcess(now)
	})
}

func (uc *SalaryUseCase) mutate(
	ctx context.Context,
	actor domain.Actor,
	salaryID string,
	fn func(record *domain.SalaryRecord, now time.Time) error,
) (*domain.SalaryRecord, error) {
	if err := actor.RequireMutate(); err != nil {
		return nil, err
	}

	var updated *domain.SalaryRecord
	err := runInTx(ctx, uc.txManager, uc.retrier, func(ctx context.Context, tx Transaction) error {
		record, err := uc.salaryRepo.GetByIDForUpdate(ctx, tx, salaryID)
		if err != nil {
			return err
		}

		before := domain.MarshalState(record)
		now := uc.now()

		if err := fn(record, now); err != nil {
			return err
		}
		if err := uc.salaryRepo.Update(ctx, tx, record); err != nil {
			return err
		}

		if err := uc.trail.audit(ctx, tx, actor, domain.AuditActionSalaryUpdate,
			domain.AggregateTypeSalary, record.ID, before, domain.MarshalState(record), now); err != nil {
			return err
		}

		updated = record
		return nil
	})
	if err != nil {
		uc.logger.Warn().Err(err).Str("salary_id", salaryID).Msg("salary update rejected")
		return nil, err
	}

	return updated, nil
}

// GetSalary retrieves a salary record by ID.
func (uc *SalaryUseCase) GetSalary(ctx context.Context, id string) (*domain.SalaryRecord, error) {
	return uc.salaryRepo.GetByID(ctx, id)
}

// ListSalaries lists salary records matching filter.
func (uc *SalaryUseCase) ListSalaries(ctx context.Context, filter domain.SalaryFilter) ([]*domain.SalaryRecord, error) {
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)
	return uc.salaryRepo.List(ctx, filter)
}
