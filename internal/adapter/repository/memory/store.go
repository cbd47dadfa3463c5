// Package memory keeps every aggregate in process memory. Transactions are
// serialized store-wide: Begin waits until no other transaction is open, and
// writes are staged on the transaction and applied together on Commit.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

// Store implements usecase.TransactionManager over in-memory tables.
type Store struct {
	sem chan struct{}
	mu  sync.RWMutex

	approvals   *table[domain.ApprovalRequest]
	entries     *table[domain.LedgerEntry]
	vendors     *table[domain.VendorPaymentAccount]
	liabilities *table[domain.LiabilityAccount]
	salaries    *table[domain.SalaryRecord]
	outbox      *table[domain.OutboxEvent]
	audit       *table[domain.AuditLog]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem: make(chan struct{}, 1),
		approvals: newTable("approvals", domain.ErrApprovalNotFound,
			func(a *domain.ApprovalRequest) string { return a.ID },
			func(a *domain.ApprovalRequest) *int64 { return &a.Version }),
		entries: newTable("entries", domain.ErrEntryNotFound,
			func(e *domain.LedgerEntry) string { return e.ID },
			func(e *domain.LedgerEntry) *int64 { return &e.Version }),
		vendors: newTable("vendor_payments", domain.ErrVendorPaymentNotFound,
			func(v *domain.VendorPaymentAccount) string { return v.ID },
			func(v *domain.VendorPaymentAccount) *int64 { return &v.Version }),
		liabilities: newTable("liabilities", domain.ErrLiabilityNotFound,
			func(l *domain.LiabilityAccount) string { return l.ID },
			func(l *domain.LiabilityAccount) *int64 { return &l.Version }),
		salaries: newTable("salaries", domain.ErrSalaryNotFound,
			func(s *domain.SalaryRecord) string { return s.ID },
			func(s *domain.SalaryRecord) *int64 { return &s.Version }),
		outbox: newTable("outbox_events", domain.ErrNotFound,
			func(e *domain.OutboxEvent) string { return e.ID }, nil),
		audit: newTable("audit_logs", domain.ErrNotFound,
			func(l *domain.AuditLog) string { return l.ID }, nil),
	}
}

// Begin waits for exclusive use of the store and opens a transaction.
func (s *Store) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Tx{store: s, staged: make(map[string]any)}, nil
}

// Tx is an open store transaction.
type Tx struct {
	store  *Store
	staged map[string]any
	ops    []func()
	done   bool
}

// Commit applies the staged writes and releases the store.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("memory: transaction already closed")
	}

	t.store.mu.Lock()
	for _, op := range t.ops {
		op()
	}
	t.store.mu.Unlock()

	t.close()
	return nil
}

// Rollback discards the staged writes. Rolling back a closed transaction is
// a no-op.
func (t *Tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.close()
	return nil
}

func (t *Tx) close() {
	t.done = true
	t.staged = nil
	t.ops = nil
	<-t.store.sem
}

func (s *Store) tx(tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, errForeignTx
	}
	if t.done {
		return nil, errors.New("memory: transaction already closed")
	}
	return t, nil
}

// table is one aggregate's rows. Rows are copied on every read and write so
// callers never share state with the store.
type table[T any] struct {
	name     string
	notFound error
	rows     map[string]*T
	order    []string
	id       func(*T) string
	version  func(*T) *int64
}

func newTable[T any](name string, notFound error, id func(*T) string, version func(*T) *int64) *table[T] {
	return &table[T]{
		name:     name,
		notFound: notFound,
		rows:     make(map[string]*T),
		id:       id,
		version:  version,
	}
}

func clone[T any](row *T) *T {
	c := *row
	return &c
}

func (t *table[T]) key(id string) string {
	return t.name + "/" + id
}

// visible returns the row as the transaction sees it. Caller holds mu.
func (t *table[T]) visible(tx *Tx, id string) (*T, bool) {
	if tx != nil {
		if row, ok := tx.staged[t.key(id)]; ok {
			return row.(*T), true
		}
	}
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) get(s *Store, tx *Tx, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := t.visible(tx, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", t.notFound, id)
	}
	return clone(row), nil
}

func (t *table[T]) insert(s *Store, tx *Tx, row *T) error {
	s.mu.RLock()
	_, exists := t.visible(tx, t.id(row))
	s.mu.RUnlock()
	if exists {
		return fmt.Errorf("%w: %s %s already exists", domain.ErrConflict, t.name, t.id(row))
	}

	t.stage(tx, clone(row), true)
	return nil
}

// update writes row if its version matches the visible one, then bumps the
// version on both row and the staged copy.
func (t *table[T]) update(s *Store, tx *Tx, row *T) error {
	id := t.id(row)

	s.mu.RLock()
	current, ok := t.visible(tx, id)
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", t.notFound, id)
	}

	if t.version != nil {
		if *t.version(current) != *t.version(row) {
			return fmt.Errorf("%w: %s %s was modified concurrently", domain.ErrConflict, t.name, id)
		}
		*t.version(row)++
	}

	t.stage(tx, clone(row), false)
	return nil
}

func (t *table[T]) stage(tx *Tx, row *T, isNew bool) {
	id := t.id(row)
	tx.staged[t.key(id)] = row
	tx.ops = append(tx.ops, func() {
		if _, exists := t.rows[id]; !exists && isNew {
			t.order = append(t.order, id)
		}
		t.rows[id] = row
	})
}

// list returns committed rows matching keep, newest first.
func (t *table[T]) list(s *Store, keep func(*T) bool, limit, offset int) []*T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*T, 0)
	skipped := 0
	for i := len(t.order) - 1; i >= 0; i-- {
		row := t.rows[t.order[i]]
		if keep != nil && !keep(row) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, clone(row))
	}
	return out
}

// sorted returns every committed row matching keep ordered by less. Ties
// keep insertion order.
func (t *table[T]) sorted(s *Store, keep func(*T) bool, less func(a, b *T) bool) []*T {
	s.mu.RLock()
	rows := make([]*T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			rows = append(rows, clone(row))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
	return rows
}
