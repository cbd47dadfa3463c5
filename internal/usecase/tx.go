package usecase

import (
	"context"
	"time"

	"github.com/iho/opsledger/internal/domain"
)

// runInTx runs fn in a transaction bounded by DefaultTransactionTimeout and
// commits when fn succeeds. With a retrier, the whole attempt is repeated on
// transient storage errors, so fn must reload everything it mutates.
func runInTx(ctx context.Context, txManager TransactionManager, retrier Retrier, fn func(ctx context.Context, tx Transaction) error) error {
	attempt := func() error {
		txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
		defer cancel()

		tx, err := txManager.Begin(txCtx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(txCtx) }()

		if err := fn(txCtx, tx); err != nil {
			return err
		}

		return tx.Commit(txCtx)
	}

	if retrier == nil {
		return attempt()
	}
	return retrier.Retry(ctx, attempt)
}

// trail writes the audit row and outbox event that accompany every mutation,
// inside the mutating transaction.
type trail struct {
	outboxRepo OutboxRepository
	auditRepo  AuditRepository
	idGen      IDGenerator
}

func newTrail(outboxRepo OutboxRepository, auditRepo AuditRepository, idGen IDGenerator) trail {
	return trail{outboxRepo: outboxRepo, auditRepo: auditRepo, idGen: idGen}
}

func (t trail) audit(
	ctx context.Context,
	tx Transaction,
	actor domain.Actor,
	action domain.AuditAction,
	resourceType, resourceID string,
	before, after domain.JSON,
	at time.Time,
) error {
	if t.auditRepo == nil {
		return nil
	}

	return t.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           t.idGen.Generate(),
		ActorID:      actor.EmployeeID,
		Action:       string(action),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    RequestIDFromContext(ctx),
		BeforeState:  before,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    at,
	})
}

func (t trail) emit(
	ctx context.Context,
	tx Transaction,
	aggregateType, aggregateID, eventType string,
	payload map[string]any,
	at time.Time,
) error {
	if t.outboxRepo == nil {
		return nil
	}

	return t.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            t.idGen.Generate(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
		Published:     false,
	})
}

type requestIDKey struct{}

// WithRequestID attaches the HTTP request id so audit rows can be correlated
// with request logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
