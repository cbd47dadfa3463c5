package usecase

import (
	"context"
	"time"

	"github.com/iho/opsledger/internal/domain"
)

// ApprovalRepository defines data access for approval requests.
//
// Update is versioned: it writes only if the stored version equals
// approval.Version, bumps approval.Version on success and returns
// domain.ErrConflict when no row matched. The same holds for every
// repository Update below.
type ApprovalRepository interface {
	Create(ctx context.Context, tx Transaction, approval *domain.ApprovalRequest) error
	GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ApprovalRequest, error)
	Update(ctx context.Context, tx Transaction, approval *domain.ApprovalRequest) error
	List(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error)
}

// LedgerEntryRepository defines data access for ledger entries.
type LedgerEntryRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LedgerEntry, error)
	Update(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	List(ctx context.Context, filter domain.EntryFilter) ([]*domain.LedgerEntry, error)
	ListByReference(ctx context.Context, ref domain.Reference) ([]*domain.LedgerEntry, error)
}

// VendorPaymentRepository defines data access for vendor payment accounts.
type VendorPaymentRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.VendorPaymentAccount) error
	GetByID(ctx context.Context, id string) (*domain.VendorPaymentAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.VendorPaymentAccount, error)
	Update(ctx context.Context, tx Transaction, account *domain.VendorPaymentAccount) error
	List(ctx context.Context, limit, offset int) ([]*domain.VendorPaymentAccount, error)
}

// LiabilityRepository defines data access for liability accounts.
type LiabilityRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.LiabilityAccount) error
	GetByID(ctx context.Context, id string) (*domain.LiabilityAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LiabilityAccount, error)
	Update(ctx context.Context, tx Transaction, account *domain.LiabilityAccount) error
	List(ctx context.Context, limit, offset int) ([]*domain.LiabilityAccount, error)
}

// SalaryRepository defines data access for salary records.
type SalaryRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.SalaryRecord) error
	GetByID(ctx context.Context, id string) (*domain.SalaryRecord, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.SalaryRecord, error)
	Update(ctx context.Context, tx Transaction, record *domain.SalaryRecord) error
	List(ctx context.Context, filter domain.SalaryFilter) ([]*domain.SalaryRecord, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation that failed on a transient storage error.
// Implementations return domain.ErrConflict once retries are exhausted.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// SequenceGenerator hands out gap-tolerant, strictly increasing numbers per
// named sequence.
type SequenceGenerator interface {
	Next(ctx context.Context, name string) (int64, error)
}

// EmployeeDirectory reads the staff hierarchy owned by another service.
type EmployeeDirectory interface {
	// LookupEmployee returns domain.ErrEmployeeNotFound for unknown ids.
	LookupEmployee(ctx context.Context, id string) (*domain.Employee, error)
	ListByLevel(ctx context.Context, level int) ([]*domain.Employee, error)
}

// ReferenceDirectory checks reference targets held outside this core.
type ReferenceDirectory interface {
	Exists(ctx context.Context, kind domain.ReferenceKind, id string) (bool, error)
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
