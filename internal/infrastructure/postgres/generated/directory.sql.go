package generated

import (
	"context"
)

const createExternalReference = `-- name: CreateExternalReference :exec
INSERT INTO external_references (kind, id) VALUES ($1, $2)
`

type CreateExternalReferenceParams struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (q *Queries) CreateExternalReference(ctx context.Context, arg CreateExternalReferenceParams) error {
	_, err := q.db.Exec(ctx, createExternalReference, arg.Kind, arg.ID)
	return err
}

const externalReferenceExists = `-- name: ExternalReferenceExists :one
SELECT EXISTS (SELECT 1 FROM external_references WHERE kind = $1 AND id = $2)
`

type ExternalReferenceExistsParams struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

func (q *Queries) ExternalReferenceExists(ctx context.Context, arg ExternalReferenceExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, externalReferenceExists, arg.Kind, arg.ID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getEmployeeByID = `-- name: GetEmployeeByID :one
SELECT id, name, role, department, level, active FROM employees
WHERE id = $1
`

func (q *Queries) GetEmployeeByID(ctx context.Context, id string) (Employee, error) {
	row := q.db.QueryRow(ctx, getEmployeeByID, id)
	var i Employee
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Role,
		&i.Department,
		&i.Level,
		&i.Active,
	)
	return i, err
}

const listEmployeesByLevel = `-- name: ListEmployeesByLevel :many
SELECT id, name, role, department, level, active FROM employees
WHERE level = $1
ORDER BY id
`

func (q *Queries) ListEmployeesByLevel(ctx context.Context, level int32) ([]Employee, error) {
	rows, err := q.db.Query(ctx, listEmployeesByLevel, level)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Employee{}
	for rows.Next() {
		var i Employee
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Role,
			&i.Department,
			&i.Level,
			&i.Active,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const nextSequenceValue = `-- name: NextSequenceValue :one
INSERT INTO sequences (name, value) VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
RETURNING value
`

func (q *Queries) NextSequenceValue(ctx context.Context, name string) (int64, error) {
	row := q.db.QueryRow(ctx, nextSequenceValue, name)
	var value int64
	err := row.Scan(&value)
	return value, err
}
