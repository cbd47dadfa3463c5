package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres/generated"
	"github.com/iho/opsledger/internal/usecase"
)

const entryColumns = `id, category, subtype, amount, debit_account, credit_account, status,
	narration, posting_date, reference_type, reference_id, approval_id, created_by,
	posted_at, completed_at, cancelled_at, version, created_at, updated_at`

// EntryRepository implements usecase.LedgerEntryRepository.
type EntryRepository struct {
	pool    Pool
	queries *generated.Queries
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool Pool) *EntryRepository {
	return &EntryRepository{
		pool:    pool,
		queries: generated.New(pool),
	}
}

// Create creates a new ledger entry within a transaction.
func (r *EntryRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.LedgerEntry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	refType, refID := referenceColumns(e.Reference)

	err = queries.CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
		ID:            e.ID,
		Category:      string(e.Category),
		Subtype:       e.Subtype,
		Amount:        decimalToNumeric(e.Amount),
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
		Status:        string(e.Status),
		Narration:     e.Narration,
		PostingDate:   timeToPgTimestamptz(e.PostingDate),
		ReferenceType: refType,
		ReferenceID:   refID,
		ApprovalID:    optionalText(e.ApprovalID),
		CreatedBy:     e.CreatedBy,
		PostedAt:      optionalTimestamptz(e.PostedAt),
		CompletedAt:   optionalTimestamptz(e.CompletedAt),
		CancelledAt:   optionalTimestamptz(e.CancelledAt),
		Version:       e.Version,
		CreatedAt:     timeToPgTimestamptz(e.CreatedAt),
		UpdatedAt:     timeToPgTimestamptz(e.UpdatedAt),
	})

	return writeError(err)
}

// GetByID retrieves a ledger entry by ID.
func (r *EntryRepository) GetByID(ctx context.Context, id string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByID(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrEntryNotFound, id)
	}
	return rowToEntry(row)
}

// GetByIDForUpdate retrieves a ledger entry by ID with a FOR UPDATE lock.
func (r *EntryRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LedgerEntry, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetLedgerEntryByIDForUpdate(ctx, id)
	if err != nil {
		return nil, readError(err, domain.ErrEntryNotFound, id)
	}
	return rowToEntry(row)
}

// Update writes the mutable entry fields if the stored version still matches.
// Category and reference are fixed at creation.
func (r *EntryRepository) Update(ctx context.Context, tx usecase.Transaction, e *domain.LedgerEntry) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	tag, err := queries.UpdateLedgerEntry(ctx, generated.UpdateLedgerEntryParams{
		ID:            e.ID,
		Version:       e.Version,
		Amount:        decimalToNumeric(e.Amount),
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
		Status:        string(e.Status),
		Narration:     e.Narration,
		ApprovalID:    optionalText(e.ApprovalID),
		PostedAt:      optionalTimestamptz(e.PostedAt),
		CompletedAt:   optionalTimestamptz(e.CompletedAt),
		CancelledAt:   optionalTimestamptz(e.CancelledAt),
		UpdatedAt:     timeToPgTimestamptz(e.UpdatedAt),
	})
	if err := versioned(tag, err, "entry", e.ID); err != nil {
		return err
	}

	e.Version++
	return nil
}

// List returns entries matching filter, newest first.
func (r *EntryRepository) List(ctx context.Context, f domain.EntryFilter) ([]*domain.LedgerEntry, error) {
	var w filter
	if f.Status != "" {
		w.eq("status", string(f.Status))
	}
	if f.Category != "" {
		w.eq("category", string(f.Category))
	}
	if f.ReferenceKind != "" {
		w.eq("reference_type", string(f.ReferenceKind))
	}
	if f.ReferenceID != "" {
		w.eq("reference_id", f.ReferenceID)
	}

	query := `SELECT ` + entryColumns + ` FROM ledger_entries` + w.where() +
		` ORDER BY created_at DESC, id DESC` + w.page(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.LedgerEntry, 0)
	for rows.Next() {
		row, err := scanEntryRow(rows)
		if err != nil {
			return nil, err
		}
		e, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListByReference returns every entry settling ref, oldest first.
func (r *EntryRepository) ListByReference(ctx context.Context, ref domain.Reference) ([]*domain.LedgerEntry, error) {
	if ref == nil {
		return []*domain.LedgerEntry{}, nil
	}

	refType, refID := referenceColumns(ref)
	rows, err := r.queries.ListLedgerEntriesByReference(ctx, generated.ListLedgerEntriesByReferenceParams{
		ReferenceType: refType,
		ReferenceID:   refID,
	})
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		e, err := rowToEntry(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

func referenceColumns(ref domain.Reference) (pgtype.Text, pgtype.Text) {
	if ref == nil {
		return pgtype.Text{}, pgtype.Text{}
	}
	return pgtype.Text{String: string(ref.Kind()), Valid: true},
		pgtype.Text{String: ref.TargetID(), Valid: true}
}

func scanEntryRow(row pgx.Row) (generated.LedgerEntry, error) {
	var i generated.LedgerEntry
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

// rowToEntry fails only when the stored reference kind is unknown.
func rowToEntry(row generated.LedgerEntry) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{
		ID:            row.ID,
		Category:      domain.EntryCategory(row.Category),
		Subtype:       row.Subtype,
		Amount:        numericToDecimal(row.Amount),
		DebitAccount:  row.DebitAccount,
		CreditAccount: row.CreditAccount,
		Status:        domain.EntryStatus(row.Status),
		Narration:     row.Narration,
		PostingDate:   row.PostingDate.Time,
		ApprovalID:    textPtr(row.ApprovalID),
		CreatedBy:     row.CreatedBy,
		PostedAt:      timestamptzPtr(row.PostedAt),
		CompletedAt:   timestamptzPtr(row.CompletedAt),
		CancelledAt:   timestamptzPtr(row.CancelledAt),
		Version:       row.Version,
		CreatedAt:     row.CreatedAt.Time,
		UpdatedAt:     row.UpdatedAt.Time,
	}

	if row.ReferenceType.Valid {
		ref, err := domain.NewReference(domain.ReferenceKind(row.ReferenceType.String), row.ReferenceID.String)
		if err != nil {
			return nil, err
		}
		e.Reference = ref
	}

	return e, nil
}
