package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres/generated"
	"github.com/iho/opsledger/internal/usecase"
)

const approvalColumns = `id, category, requester_id, approver_id, min_expense, max_expense,
	priority, tentative_date, reason, status, decision_note, decided_by, decided_at,
	version, created_at, updated_at`

// ApprovalRepository implements usecase.ApprovalRepository.
type ApprovalRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewApprovalRepository creates a new ApprovalRepository.
func NewApprovalRepository(pool Pool) *ApprovalRepository {
	return &ApprovalRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create inserts a new approval request within a transaction.
func (r *ApprovalRepository) Create(ctx context.Context, tx usecase.Transaction, a *domain.ApprovalRequest) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateApprovalRequest(ctx, generated.CreateApprovalRequestParams{
		ID:            a.ID,
		Category:      string(a.Category),
		RequesterID:   a.RequesterID,
		ApproverID:    a.ApproverID,
		MinExpense:    decimalToNumeric(a.MinExpense),
		MaxExpense:    decimalToNumeric(a.MaxExpense),
		Priority:      string(a.Priority),
		TentativeDate: timeToPgTimestamptz(a.TentativeDate),
		Reason:        a.Reason,
		Status:        string(a.Status),
		DecisionNote:  a.DecisionNote,
		DecidedBy:     a.DecidedBy,
		DecidedAt:     optionalTimestamptz(a.DecidedAt),
		Version:       a.Version,
		CreatedAt:     timeToPgTimestamptz(a.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(a.UpdatedAt),
	})

	return writeError(err)
}

// GetByID retrieves an approval request by ID.
func (r *ApprovalRepository) GetByID(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	row, err := r.queries.GetApprovalRequestByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrApprovalNotFound, id)
	}
	return rowToApproval(row), nil
}

// GetByIDForUpdate retrieves an approval request by ID with a FOR UPDATE lock.
func (r *ApprovalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.ApprovalRequest, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetApprovalRequestByIDForUpdate(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrApprovalNotFound, id)
	}
	return rowToApproval(row), nil
}

// Update writes the decision fields if the stored version still matches.
func (r *ApprovalRepository) Update(ctx context.Context, tx usecase.Transaction, a *domain.ApprovalRequest) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	tag, err := queries.UpdateApprovalDecision(ctx, generated.UpdateApprovalDecisionParams{
		ID:           a.ID,
		Version:      a.Version,
		Status:       string(a.Status),
		DecisionNote: a.DecisionNote,
		DecidedBy:    a.DecidedBy,
		DecidedAt:    optionalTimestamptz(a.DecidedAt),
		UpdatedAt:    timeToPgTimestamptz(a.UpdatedAt),
	})
	if err := versioned(tag, err, "approval", a.ID); err != nil {
		return err
	}

	a.Version++
	return nil
}

// List returns approval requests matching filter, newest first. The WHERE
// clause depends on which filter fields are set, so it is built here rather
// than in the generated queries.
func (r *ApprovalRepository) List(ctx context.Context, f domain.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	var w filter
	if f.Status != "" {
		w.eq("status", string(f.Status))
	}
	if f.Category != "" {
		w.eq("category", string(f.Category))
	}
	if f.RequesterID != "" {
		w.eq("requester_id", f.RequesterID)
	}
	if f.ApproverID != "" {
		w.eq("approver_id", f.ApproverID)
	}

	query := `SELECT ` + approvalColumns + ` FROM approval_requests` + w.where() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	approvals := make([]*domain.ApprovalRequest, 0)
	for rows.Next() {
		row, err := scanApprovalRow(rows)
		if err != nil {
			return nil, err
		}
		approvals = append(approvals, rowToApproval(row))
	}

	return approvals, rows.Err()
}

func scanApprovalRow(row pgx.Row) (generated.ApprovalRequest, error) {
	var i generated.ApprovalRequest
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

func rowToApproval(row generated.ApprovalRequest) *domain.ApprovalRequest {
	return &domain.ApprovalRequest{
		ID:            row.ID,
		Category:      domain.ApprovalCategory(row.Category),
		RequesterID:   row.RequesterID,
		ApproverID:    row.ApproverID,
		MinExpense:    numericToDecimal(row.MinExpense),
		MaxExpense:    numericToDecimal(row.MaxExpense),
		Priority:      domain.Priority(row.Priority),
		TentativeDate: row.TentativeDate.Time,
		Reason:        row.Reason,
		Status:        domain.ApprovalStatus(row.Status),
		DecisionNote:  row.DecisionNote,
		DecidedBy:     row.DecidedBy,
		DecidedAt:     timestamptzPtr(row.DecidedAt),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}
}
