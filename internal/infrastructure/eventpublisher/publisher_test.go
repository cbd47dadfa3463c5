package eventpublisher

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/metrics"
	"github.com/iho/opsledger/internal/usecase"
)

func TestProcessEventsPublishesAndMarks(t *testing.T) {
	repo := &stubOutboxRepo{events: []*domain.OutboxEvent{
		approvalEvent("evt-1", "APR-00001", domain.EventTypeApprovalCreated),
		approvalEvent("evt-2", "APR-00001", domain.EventTypeApprovalDecided),
	}}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)

	require.NoError(t, ep.processEvents(context.Background()))

	assert.Equal(t, []string{"evt-1", "evt-2"}, publishedIDs(pub))
	assert.Equal(t, []string{"evt-1", "evt-2"}, repo.marked)
	assert.Equal(t, 1.0, testutil.ToFloat64(ep.metrics.EventsPublished.WithLabelValues(domain.EventTypeApprovalDecided)))
}

func TestProcessEventsHoldsBackAggregateAfterFailure(t *testing.T) {
	repo := &stubOutboxRepo{events: []*domain.OutboxEvent{
		approvalEvent("evt-1", "APR-00001", domain.EventTypeApprovalCreated),
		approvalEvent("evt-2", "APR-00002", domain.EventTypeApprovalCreated),
		approvalEvent("evt-3", "APR-00001", domain.EventTypeApprovalDecided),
	}}
	pub := &stubPublisher{errorsByID: map[string]error{"evt-1": errors.New("broker unavailable")}}
	ep := newTestPublisher(repo, pub)

	require.NoError(t, ep.processEvents(context.Background()))

	assert.Equal(t, []string{"evt-2"}, publishedIDs(pub), "evt-3 waits for evt-1")
	assert.Equal(t, []string{"evt-2"}, repo.marked)
	assert.Equal(t, 1.0, testutil.ToFloat64(ep.metrics.EventPublishFails))

	delete(pub.errorsByID, "evt-1")
	repo.events = repo.events[:0]
	repo.events = append(repo.events,
		approvalEvent("evt-1", "APR-00001", domain.EventTypeApprovalCreated),
		approvalEvent("evt-3", "APR-00001", domain.EventTypeApprovalDecided),
	)

	require.NoError(t, ep.processEvents(context.Background()))
	assert.Equal(t, []string{"evt-2", "evt-1", "evt-3"}, publishedIDs(pub))
}

func TestProcessEventsReturnsFetchError(t *testing.T) {
	repo := &stubOutboxRepo{fetchErr: errors.New("db down")}
	ep := newTestPublisher(repo, &stubPublisher{})

	if err := ep.processEvents(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
}

func TestTickPrunesPublishedEvents(t *testing.T) {
	repo := &stubOutboxRepo{}
	ep := newTestPublisher(repo, &stubPublisher{})
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ep.now = func() time.Time { return now }
	ep.retention = time.Hour

	ep.tick(context.Background())

	if !repo.prunedBefore.Equal(now.Add(-time.Hour)) {
		t.Fatalf("expected prune cutoff %s, got %s", now.Add(-time.Hour), repo.prunedBefore)
	}
}

func TestStartRelaysBeforeFirstInterval(t *testing.T) {
	repo := &stubOutboxRepo{events: []*domain.OutboxEvent{
		approvalEvent("evt-1", "APR-00001", domain.EventTypeApprovalCreated),
	}}
	pub := &stubPublisher{}
	ep := newTestPublisher(repo, pub)
	ep.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ep.Start(ctx) }()

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop after cancel")
	}
}

func TestLogPublisherWritesPayload(t *testing.T) {
	var buf bytes.Buffer
	pub := NewLogPublisher(zerolog.New(&buf))

	err := pub.Publish(context.Background(), &domain.OutboxEvent{
		ID:          "evt-1",
		EventType:   domain.EventTypeEntryPosted,
		AggregateID: "TXN-1",
		Payload:     map[string]any{"amount": "8325.00"},
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if !strings.Contains(buf.String(), `"payload":{"amount":"8325.00"}`) {
		t.Fatalf("expected payload in log line, got %s", buf.String())
	}
}

func newTestPublisher(repo *stubOutboxRepo, pub *stubPublisher) *EventPublisher {
	return NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  pub,
		Metrics:    metrics.NewWithRegistry(prometheus.NewRegistry()),
		Logger:     zerolog.Nop(),
		BatchSize:  10,
		Interval:   5 * time.Millisecond,
	})
}

type stubOutboxRepo struct {
	events       []*domain.OutboxEvent
	fetchErr     error
	marked       []string
	prunedBefore time.Time
}

var _ usecase.OutboxRepository = (*stubOutboxRepo)(nil)

func (s *stubOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	return nil
}

func (s *stubOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) <= limit {
		return append([]*domain.OutboxEvent(nil), s.events...), nil
	}
	return append([]*domain.OutboxEvent(nil), s.events[:limit]...), nil
}

func (s *stubOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	s.marked = append(s.marked, id)
	return nil
}

func (s *stubOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	s.prunedBefore = before
	return nil
}

type stubPublisher struct {
	mu         sync.Mutex
	published  []*domain.OutboxEvent
	errorsByID map[string]error
}

func (s *stubPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errorsByID[event.ID]; err != nil {
		return err
	}
	s.published = append(s.published, event)
	return nil
}

func (s *stubPublisher) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

func publishedIDs(p *stubPublisher) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.published))
	for _, e := range p.published {
		ids = append(ids, e.ID)
	}
	return ids
}

func approvalEvent(id, approvalID, eventType string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:            id,
		AggregateType: domain.AggregateTypeApproval,
		AggregateID:   approvalID,
		EventType:     eventType,
	}
}
