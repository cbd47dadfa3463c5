package postgres

import (
	"context"
	"encoding/json"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres/generated"
	"github.com/iho/opsledger/internal/usecase"
)

const auditColumns = `id, actor_id, action, resource_type, resource_id, request_id,
	before_state, after_state, status, error_message, created_at`

// AuditRepository implements audit log persistence
type AuditRepository struct {
	pool Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(pool Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// CreateTx inserts an audit log entry inside the mutating transaction
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	var beforeStateJSON, afterStateJSON []byte

	if log.BeforeState != nil {
		beforeStateJSON, err = json.Marshal(log.BeforeState)
		if err != nil {
			return err
		}
	}

	if log.AfterState != nil {
		afterStateJSON, err = json.Marshal(log.AfterState)
		if err != nil {
			return err
		}
	}

	err = queries.CreateAuditLog(ctx, generated.CreateAuditLogParams{
		ID:           log.ID,
		ActorID:      log.ActorID,
		Action:       log.Action,
		ResourceType: log.ResourceType,
		ResourceID:   log.ResourceID,
		RequestID:    log.RequestID,
		BeforeState:  beforeStateJSON,
		AfterState:   afterStateJSON,
		Status:       log.Status,
		ErrorMessage: log.ErrorMessage,
		CreatedAt:    timeToPgTimestamptz(log.CreatedAt),
	})

	return writeError(err)
}

// List retrieves audit logs with filtering, oldest first
func (r *AuditRepository) List(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	var w filter
	if f.ActorID != "" {
		w.eq("actor_id", f.ActorID)
	}
	if f.Action != "" {
		w.eq("action", f.Action)
	}
	if f.ResourceType != "" {
		w.eq("resource_type", f.ResourceType)
	}
	if f.ResourceID != "" {
		w.eq("resource_id", f.ResourceID)
	}
	if f.StartDate != nil {
		w.op("created_at", ">=", timeToPgTimestamptz(*f.StartDate))
	}
	if f.EndDate != nil {
		w.op("created_at", "<", timeToPgTimestamptz(*f.EndDate))
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.where() +
		` ORDER BY created_at, id` + w.page(f.Limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		var i generated.AuditLog
		err := rows.Scan(
			&i.ID,
			&i.ActorID,
			&i.Action,
			&i.ResourceType,
			&i.ResourceID,
			&i.RequestID,
			&i.BeforeState,
			&i.AfterState,
			&i.Status,
			&i.ErrorMessage,
			&i.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, rowToAuditLog(i))
	}

	return logs, rows.Err()
}

func rowToAuditLog(row generated.AuditLog) *domain.AuditLog {
	log := &domain.AuditLog{
		ID:           row.ID,
		ActorID:      row.ActorID,
		Action:       row.Action,
		ResourceType: row.ResourceType,
		ResourceID:   row.ResourceID,
		RequestID:    row.RequestID,
		Status:       row.Status,
		ErrorMessage: row.ErrorMessage,
		CreatedAt:    row.CreatedAt.Time,
	}

	if row.BeforeState != nil {
		_ = json.Unmarshal(row.BeforeState, &log.BeforeState)
	}

	if row.AfterState != nil {
		_ = json.Unmarshal(row.AfterState, &log.AfterState)
	}

	return log
}
