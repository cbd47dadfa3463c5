package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iho/opsledger/internal/domain"
)

// EmployeeDirectory is a fixed staff list, used for local runs and tests.
type EmployeeDirectory struct {
	mu        sync.RWMutex
	employees map[string]domain.Employee
}

// NewEmployeeDirectory creates a directory holding employees.
func NewEmployeeDirectory(employees ...domain.Employee) *EmployeeDirectory {
	d := &EmployeeDirectory{employees: make(map[string]domain.Employee, len(employees))}
	for _, e := range employees {
		d.employees[e.ID] = e
	}
	return d
}

// Put adds or replaces an employee.
func (d *EmployeeDirectory) Put(e domain.Employee) {
	d.mu.Lock()
	d.employees[e.ID] = e
	d.mu.Unlock()
}

func (d *EmployeeDirectory) LookupEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.employees[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmployeeNotFound, id)
	}
	return &e, nil
}

// ListByLevel returns employees at level ordered by ID.
func (d *EmployeeDirectory) ListByLevel(ctx context.Context, level int) ([]*domain.Employee, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*domain.Employee, 0)
	for _, e := range d.employees {
		if e.Level == level {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReferenceDirectory records which external reference targets exist.
type ReferenceDirectory struct {
	mu    sync.RWMutex
	known map[domain.ReferenceKind]map[string]bool
}

// NewReferenceDirectory creates an empty ReferenceDirectory.
func NewReferenceDirectory() *ReferenceDirectory {
	return &ReferenceDirectory{known: make(map[domain.ReferenceKind]map[string]bool)}
}

// Register marks id of kind as existing.
func (d *ReferenceDirectory) Register(kind domain.ReferenceKind, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.known[kind] == nil {
		d.known[kind] = make(map[string]bool)
	}
	d.known[kind][id] = true
}

func (d *ReferenceDirectory) Exists(ctx context.Context, kind domain.ReferenceKind, id string) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.known[kind][id], nil
}

// SequenceGenerator counts per name from 1.
type SequenceGenerator struct {
	mu     sync.Mutex
	values map[string]int64
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{values: make(map[string]int64)}
}

func (g *SequenceGenerator) Next(ctx context.Context, name string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[name]++
	return g.values[name], nil
}
