package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const createLedgerEntry = `-- name: CreateLedgerEntry :exec
INSERT INTO ledger_entries (id, category, subtype, amount, debit_account, credit_account, status, narration, posting_date, reference_type, reference_id, approval_id, created_by, posted_at, completed_at, cancelled_at, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
`

type CreateLedgerEntryParams struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	Subtype       string             `json:"subtype"`
	Amount        pgtype.Numeric     `json:"amount"`
	DebitAccount  string             `json:"debit_account"`
	CreditAccount string             `json:"credit_account"`
	Status        string             `json:"status"`
	Narration     string             `json:"narration"`
	PostingDate   pgtype.Timestamptz `json:"posting_date"`
	ReferenceType pgtype.Text        `json:"reference_type"`
	ReferenceID   pgtype.Text        `json:"reference_id"`
	ApprovalID    pgtype.Text        `json:"approval_id"`
	CreatedBy     string             `json:"created_by"`
	PostedAt      pgtype.Timestamptz `json:"posted_at"`
	CompletedAt   pgtype.Timestamptz `json:"completed_at"`
	CancelledAt   pgtype.Timestamptz `json:"cancelled_at"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) CreateLedgerEntry(ctx context.Context, arg CreateLedgerEntryParams) error {
	_, err := q.db.Exec(ctx, createLedgerEntry,
		arg.ID,
		arg.Category,
		arg.Subtype,
		arg.Amount,
		arg.DebitAccount,
		arg.CreditAccount,
		arg.Status,
		arg.Narration,
		arg.PostingDate,
		arg.ReferenceType,
		arg.ReferenceID,
		arg.ApprovalID,
		arg.CreatedBy,
		arg.PostedAt,
		arg.CompletedAt,
		arg.CancelledAt,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLedgerEntryByID = `-- name: GetLedgerEntryByID :one
SELECT id, category, subtype, amount, debit_account, credit_account, status, narration, posting_date, reference_type, reference_id, approval_id, created_by, posted_at, completed_at, cancelled_at, version, created_at, updated_at FROM ledger_entries WHERE id = $1
`

func (q *Queries) GetLedgerEntryByID(ctx context.Context, id string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByID, id)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.Category,
		&i.Subtype,
		&i.Amount,
		&i.DebitAccount,
		&i.CreditAccount,
		&i.Status,
		&i.Narration,
		&i.PostingDate,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.ApprovalID,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CompletedAt,
		&i.CancelledAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getLedgerEntryByIDForUpdate = `-- name: GetLedgerEntryByIDForUpdate :one
SELECT id, category, subtype, amount, debit_account, credit_account, status, narration, posting_date, reference_type, reference_id, approval_id, created_by, posted_at, completed_at, cancelled_at, version, created_at, updated_at FROM ledger_entries WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetLedgerEntryByIDForUpdate(ctx context.Context, id string) (LedgerEntry, error) {
	row := q.db.QueryRow(ctx, getLedgerEntryByIDForUpdate, id)
	var i LedgerEntry
	err := row.Scan(
		&i.ID,
		&i.Category,
		&i.Subtype,
		&i.Amount,
		&i.DebitAccount,
		&i.CreditAccount,
		&i.Status,
		&i.Narration,
		&i.PostingDate,
		&i.ReferenceType,
		&i.ReferenceID,
		&i.ApprovalID,
		&i.CreatedBy,
		&i.PostedAt,
		&i.CompletedAt,
		&i.CancelledAt,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listLedgerEntriesByReference = `-- name: ListLedgerEntriesByReference :many
SELECT id, category, subtype, amount, debit_account, credit_account, status, narration, posting_date, reference_type, reference_id, approval_id, created_by, posted_at, completed_at, cancelled_at, version, created_at, updated_at FROM ledger_entries
WHERE reference_type = $1 AND reference_id = $2
ORDER BY created_at, id
`

type ListLedgerEntriesByReferenceParams struct {
	ReferenceType pgtype.Text `json:"reference_type"`
	ReferenceID   pgtype.Text `json:"reference_id"`
}

func (q *Queries) ListLedgerEntriesByReference(ctx context.Context, arg ListLedgerEntriesByReferenceParams) ([]LedgerEntry, error) {
	rows, err := q.db.Query(ctx, listLedgerEntriesByReference, arg.ReferenceType, arg.ReferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []LedgerEntry{}
	for rows.Next() {
		var i LedgerEntry
		if err := rows.Scan(
			&i.ID,
			&i.Category,
			&i.Subtype,
			&i.Amount,
			&i.DebitAccount,
			&i.CreditAccount,
			&i.Status,
			&i.Narration,
			&i.PostingDate,
			&i.ReferenceType,
			&i.ReferenceID,
			&i.ApprovalID,
			&i.CreatedBy,
			&i.PostedAt,
			&i.CompletedAt,
			&i.CancelledAt,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const updateLedgerEntry = `-- name: UpdateLedgerEntry :execresult
UPDATE ledger_entries
SET amount = $3, debit_account = $4, credit_account = $5, status = $6, narration = $7, approval_id = $8, posted_at = $9, completed_at = $10, cancelled_at = $11, updated_at = $12, version = version + 1
WHERE id = $1 AND version = $2
`

type UpdateLedgerEntryParams struct {
	ID            string             `json:"id"`
	Version       int64              `json:"version"`
	Amount        pgtype.Numeric     `json:"amount"`
	DebitAccount  string             `json:"debit_account"`
	CreditAccount string             `json:"credit_account"`
	Status        string             `json:"status"`
	Narration     string             `json:"narration"`
	ApprovalID    pgtype.Text        `json:"approval_id"`
	PostedAt      pgtype.Timestamptz `json:"posted_at"`
	CompletedAt   pgtype.Timestamptz `json:"completed_at"`
	CancelledAt   pgtype.Timestamptz `json:"cancelled_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateLedgerEntry(ctx context.Context, arg UpdateLedgerEntryParams) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, updateLedgerEntry,
		arg.ID,
		arg.Version,
		arg.Amount,
		arg.DebitAccount,
		arg.CreditAccount,
		arg.Status,
		arg.Narration,
		arg.ApprovalID,
		arg.PostedAt,
		arg.CompletedAt,
		arg.CancelledAt,
		arg.UpdatedAt,
	)
}
