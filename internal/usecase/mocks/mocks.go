package mocks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/iho/opsledger/internal/usecase"
)

// MockTransactionManager hands out MockTransactions and counts how each one
// ended. It stands in for a database when a test only cares about commit and
// rollback behaviour.
type MockTransactionManager struct {
	BeginFunc  func(ctx context.Context) (usecase.Transaction, error)
	CommitFunc func(ctx context.Context) error

	Begun      atomic.Int32
	Committed  atomic.Int32
	RolledBack atomic.Int32
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	m.Begun.Add(1)
	return &MockTransaction{manager: m}, nil
}

// MockTransaction records its outcome on the manager that began it. Rollback
// after a successful Commit is a no-op, like pgx.
type MockTransaction struct {
	manager *MockTransactionManager
	done    bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.manager != nil && m.manager.CommitFunc != nil {
		if err := m.manager.CommitFunc(ctx); err != nil {
			return err
		}
	}
	m.done = true
	if m.manager != nil {
		m.manager.Committed.Add(1)
	}
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.done {
		return nil
	}
	m.done = true
	if m.manager != nil {
		m.manager.RolledBack.Add(1)
	}
	return nil
}

// MockIDGenerator issues Prefix-1, Prefix-2, ... unless GenerateFunc is set.
type MockIDGenerator struct {
	GenerateFunc func() string
	Prefix       string

	mu      sync.Mutex
	counter int
}

func NewMockIDGenerator(prefix string) *MockIDGenerator {
	return &MockIDGenerator{Prefix: prefix}
}

func (m *MockIDGenerator) Generate() string {
	if m.GenerateFunc != nil {
		return m.GenerateFunc()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++

	prefix := m.Prefix
	if prefix == "" {
		prefix = "mock-id"
	}
	return fmt.Sprintf("%s-%d", prefix, m.counter)
}
