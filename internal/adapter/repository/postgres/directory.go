package postgres

import (
	"context"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres/generated"
)

// EmployeeDirectory reads the employees table, which another service owns
// and keeps in sync.
type EmployeeDirectory struct {
	queries *generated.Queries
}

// NewEmployeeDirectory creates a new EmployeeDirectory.
func NewEmployeeDirectory(pool Pool) *EmployeeDirectory {
	return &EmployeeDirectory{queries: generated.New(pool)}
}

// LookupEmployee returns one employee, active or not.
func (d *EmployeeDirectory) LookupEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	row, err := d.queries.GetEmployeeByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrEmployeeNotFound, id)
	}

	return rowToEmployee(row), nil
}

// ListByLevel returns every employee at level, ordered by id.
func (d *EmployeeDirectory) ListByLevel(ctx context.Context, level int) ([]*domain.Employee, error) {
	rows, err := d.queries.ListEmployeesByLevel(ctx, int32(level))
	if err != nil {
		return nil, err
	}

	employees := make([]*domain.Employee, 0, len(rows))
	for _, row := range rows {
		employees = append(employees, rowToEmployee(row))
	}

	return employees, nil
}

func rowToEmployee(row generated.Employee) *domain.Employee {
	return &domain.Employee{
		ID:         row.ID,
		Name:       row.Name,
		Role:       row.Role,
		Department: row.Department,
		Level:      int(row.Level),
		Active:     row.Active,
	}
}

// ReferenceDirectory checks asset, service and customer payment ids against
// the external_references table.
type ReferenceDirectory struct {
	queries *generated.Queries
}

// NewReferenceDirectory creates a new ReferenceDirectory.
func NewReferenceDirectory(pool Pool) *ReferenceDirectory {
	return &ReferenceDirectory{queries: generated.New(pool)}
}

// Exists reports whether id is a known target of kind.
func (d *ReferenceDirectory) Exists(ctx context.Context, kind domain.ReferenceKind, id string) (bool, error) {
	return d.queries.ExternalReferenceExists(ctx, generated.ExternalReferenceExistsParams{
		Kind: string(kind),
		ID:   id,
	})
}

// Register records id as a target of kind. Registering twice is a conflict.
func (d *ReferenceDirectory) Register(ctx context.Context, kind domain.ReferenceKind, id string) error {
	return writeError(d.queries.CreateExternalReference(ctx, generated.CreateExternalReferenceParams{
		Kind: string(kind),
		ID:   id,
	}))
}

// SequenceGenerator numbers sequences with an upsert on the sequences table.
// It is used when Redis is not configured.
type SequenceGenerator struct {
	queries *generated.Queries
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(pool Pool) *SequenceGenerator {
	return &SequenceGenerator{queries: generated.New(pool)}
}

// Next returns the next value of the named sequence, starting at 1.
func (g *SequenceGenerator) Next(ctx context.Context, name string) (int64, error) {
	return g.queries.NextSequenceValue(ctx, name)
}
