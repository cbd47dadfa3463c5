package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const createApprovalRequest = `-- name: CreateApprovalRequest :exec
INSERT INTO approval_requests (id, category, requester_id, approver_id, min_expense, max_expense, priority, tentative_date, reason, status, decision_note, decided_by, decided_at, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
`

type CreateApprovalRequestParams struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	RequesterID   string             `json:"requester_id"`
	ApproverID    string             `json:"approver_id"`
	MinExpense    pgtype.Numeric     `json:"min_expense"`
	MaxExpense    pgtype.Numeric     `json:"max_expense"`
	Priority      string             `json:"priority"`
	TentativeDate pgtype.Timestamptz `json:"tentative_date"`
	Reason        string             `json:"reason"`
	Status        string             `json:"status"`
	DecisionNote  string             `json:"decision_note"`
	DecidedBy     string             `json:"decided_by"`
	DecidedAt     pgtype.Timestamptz `json:"decided_at"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateApprovalRequest(ctx context.Context, arg CreateApprovalRequestParams) error {
	_, err := q.db.Exec(ctx, createApprovalRequest,
		arg.ID,
		arg.Category,
		arg.RequesterID,
		arg.ApproverID,
		arg.MinExpense,
		arg.MaxExpense,
		arg.Priority,
		arg.TentativeDate,
		arg.Reason,
		arg.Status,
		arg.DecisionNote,
		arg.DecidedBy,
		arg.DecidedAt,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getApprovalRequestByID = `-- name: GetApprovalRequestByID :one
SELECT id, category, requester_id, approver_id, min_expense, max_expense, priority, tentative_date, reason, status, decision_note, decided_by, decided_at, version, created_at, updated_at FROM approval_requests WHERE id = $1
`

func (q *Queries) GetApprovalRequestByID(ctx context.Context, id string) (ApprovalRequest, error) {
	row := q.db.QueryRow(ctx, getApprovalRequestByID, id)
	var i ApprovalRequest
	err := row.Scan(
		&i.ID,
		&i.Category,
		&i.RequesterID,
		&i.ApproverID,
		&i.MinExpense,
		&i.MaxExpense,
		&i.Priority,
		&i.TentativeDate,
		&i.Reason,
		&i.Status,
		&i.DecisionNote,
		&i.DecidedBy,
		&i.DecidedAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getApprovalRequestByIDForUpdate = `-- name: GetApprovalRequestByIDForUpdate :one
SELECT id, category, requester_id, approver_id, min_expense, max_expense, priority, tentative_date, reason, status, decision_note, decided_by, decided_at, version, created_at, updated_at FROM approval_requests WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetApprovalRequestByIDForUpdate(ctx context.Context, id string) (ApprovalRequest, error) {
	row := q.db.QueryRow(ctx, getApprovalRequestByIDForUpdate, id)
	var i ApprovalRequest
	err := row.Scan(
		&i.ID,
		&i.Category,
		&i.RequesterID,
		&i.ApproverID,
		&i.MinExpense,
		&i.MaxExpense,
		&i.Priority,
		&i.TentativeDate,
		&i.Reason,
		&i.Status,
		&i.DecisionNote,
		&i.DecidedBy,
		&i.DecidedAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateApprovalDecision = `-- name: UpdateApprovalDecision :execresult
UPDATE approval_requests
SET status = $3, decision_note = $4, decided_by = $5, decided_at = $6, updated_at = $7, version = version + 1
WHERE id = $1 AND version = $2
`

type UpdateApprovalDecisionParams struct {
	ID           string             `json:"id"`
	Version      int64              `json:"version"`
	Status       string             `json:"status"`
	DecisionNote string             `json:"decision_note"`
	DecidedBy    string             `json:"decided_by"`
	DecidedAt    pgtype.Timestamptz `json:"decided_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateApprovalDecision(ctx context.Context, arg UpdateApprovalDecisionParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateApprovalDecision,
		arg.ID,
		arg.Version,
		arg.Status,
		arg.DecisionNote,
		arg.DecidedBy,
		arg.DecidedAt,
		arg.UpdatedAt,
	)
}
