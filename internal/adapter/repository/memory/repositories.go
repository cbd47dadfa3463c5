package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct{ store *Store }

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(store *Store) *ApprovalRepository {
	return &ApprovalRepository{store: store}
}

func (r *ApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, approval *domain.ApprovalRequest) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.approvals.insert(r.store, t, approval)
}

func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return r.store.approvals.get(r.store, nil, id)
}

// GetByIDForUpdate reads through the transaction. The store-wide lock is
// already held, so no row lock is needed.
func (r *ApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ApprovalRequest, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return nil, err
	}
	return r.store.approvals.get(r.store, t, id)
}

func (r *ApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, approval *domain.ApprovalRequest) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.approvals.update(r.store, t, approval)
}

func (r *ApprovalRepository) List(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	return r.store.approvals.list(r.store, filter.Matches, filter.Limit, filter.Offset), nil
}

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct{ store *Store }

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(store *Store) *LedgerEntryRepository {
	return &LedgerEntryRepository{store: store}
}

func (r *LedgerEntryRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.entries.insert(r.store, t, entry)
}

func (r *LedgerEntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	return r.store.entries.get(r.store, nil, id)
}

func (r *LedgerEntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return nil, err
	}
	return r.store.entries.get(r.store, t, id)
}

func (r *LedgerEntryRepository) Update(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.entries.update(r.store, t, entry)
}

func (r *LedgerEntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.LedgerEntry, error) {
	return r.store.entries.list(r.store, filter.Matches, filter.Limit, filter.Offset), nil
}

// ListByReference returns every entry settling ref, oldest first.
func (r *LedgerEntryRepository) ListByReference(ctx context.Context, ref domain.Reference) ([]*domain.LedgerEntry, error) {
	if ref == nil {
		return []*domain.LedgerEntry{}, nil
	}
	filter := domain.EntryFilter{ReferenceKind: ref.Kind(), ReferenceID: ref.TargetID()}
	return r.store.entries.sorted(r.store, filter.Matches, func(a, b *domain.LedgerEntry) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	}), nil
}

// VendorPaymentRepository implements usecase.VendorPaymentRepository.
type VendorPaymentRepository struct{ store *Store }

// NewVendorPaymentRepository creates a new VendorPaymentRepository.
func NewVendorPaymentRepository(store *Store) *VendorPaymentRepository {
	return &VendorPaymentRepository{store: store}
}

func (r *VendorPaymentRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.VendorPaymentAccount) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.vendors.insert(r.store, t, account)
}

func (r *VendorPaymentRepository) GetByID(ctx context.Context, id string) (*domain.VendorPaymentAccount, error) {
	return r.store.vendors.get(r.store, nil, id)
}

func (r *VendorPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.VendorPaymentAccount, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return nil, err
	}
	return r.store.vendors.get(r.store, t, id)
}

func (r *VendorPaymentRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.VendorPaymentAccount) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.vendors.update(r.store, t, account)
}

func (r *VendorPaymentRepository) List(ctx context.Context, limit, offset int) ([]*domain.VendorPaymentAccount, error) {
	return r.store.vendors.list(r.store, nil, limit, offset), nil
}

// LiabilityRepository implements usecase.LiabilityRepository.
type LiabilityRepository struct{ store *Store }

// NewLiabilityRepository creates a new LiabilityRepository.
func NewLiabilityRepository(store *Store) *LiabilityRepository {
	return &LiabilityRepository{store: store}
}

func (r *LiabilityRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.LiabilityAccount) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.liabilities.insert(r.store, t, account)
}

func (r *LiabilityRepository) GetByID(ctx context.Context, id string) (*domain.LiabilityAccount, error) {
	return r.store.liabilities.get(r.store, nil, id)
}

func (r *LiabilityRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LiabilityAccount, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return nil, err
	}
	return r.store.liabilities.get(r.store, t, id)
}

func (r *LiabilityRepository) Update(ctx context.Context, tx usecase.Transaction, account *domain.LiabilityAccount) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.liabilities.update(r.store, t, account)
}

func (r *LiabilityRepository) List(ctx context.Context, limit, offset int) ([]*domain.LiabilityAccount, error) {
	return r.store.liabilities.list(r.store, nil, limit, offset), nil
}

// SalaryRepository implements usecase.SalaryRepository.
type SalaryRepository struct{ store *Store }

// NewSalaryRepository creates a new SalaryRepository.
func NewSalaryRepository(store *Store) *SalaryRepository {
	return &SalaryRepository{store: store}
}

func (r *SalaryRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.SalaryRecord) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.salaries.insert(r.store, t, record)
}

func (r *SalaryRepository) GetByID(ctx context.Context, id string) (*domain.SalaryRecord, error) {
	return r.store.salaries.get(r.store, nil, id)
}

func (r *SalaryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.SalaryRecord, error) {
	t, err := r.store.tx(tx)
	if err != nil {
		return nil, err
	}
	return r.store.salaries.get(r.store, t, id)
}

func (r *SalaryRepository) Update(ctx context.Context, tx usecase.Transaction, record *domain.SalaryRecord) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.salaries.update(r.store, t, record)
}

func (r *SalaryRepository) List(ctx context.Context, filter domain.SalaryFilter) ([]*domain.SalaryRecord, error) {
	return r.store.salaries.list(r.store, filter.Matches, filter.Limit, filter.Offset), nil
}

// OutboxRepository implements usecase.OutboxRepository.
type OutboxRepository struct{ store *Store }

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(store *Store) *OutboxRepository {
	return &OutboxRepository{store: store}
}

func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.outbox.insert(r.store, t, event)
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	events := r.store.outbox.sorted(r.store, func(e *domain.OutboxEvent) bool { return !e.Published },
		func(a, b *domain.OutboxEvent) bool { return a.CreatedAt.Before(b.CreatedAt) })
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.outbox.rows[id]
	if !ok {
		return fmt.Errorf("outbox event %w: %s", domain.ErrNotFound, id)
	}
	updated := clone(event)
	updated.Published = true
	updated.PublishedAt = &publishedAt
	s.outbox.rows[id] = updated
	return nil
}

func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.outbox.order[:0]
	for _, id := range s.outbox.order {
		event := s.outbox.rows[id]
		if event.Published && event.PublishedAt != nil && event.PublishedAt.Before(before) {
			delete(s.outbox.rows, id)
			continue
		}
		kept = append(kept, id)
	}
	s.outbox.order = kept
	return nil
}

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct{ store *Store }

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(store *Store) *AuditRepository {
	return &AuditRepository{store: store}
}

func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	t, err := r.store.tx(tx)
	if err != nil {
		return err
	}
	return r.store.audit.insert(r.store, t, log)
}

func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	keep := func(l *domain.AuditLog) bool {
		return (filter.ActorID == "" || l.ActorID == filter.ActorID) &&
			(filter.Action == "" || l.Action == filter.Action) &&
			(filter.ResourceType == "" || l.ResourceType == filter.ResourceType) &&
			(filter.ResourceID == "" || l.ResourceID == filter.ResourceID) &&
			(filter.StartDate == nil || !l.CreatedAt.Before(*filter.StartDate)) &&
			(filter.EndDate == nil || !l.CreatedAt.After(*filter.EndDate))
	}
	return r.store.audit.list(r.store, keep, filter.Limit, filter.Offset), nil
}
