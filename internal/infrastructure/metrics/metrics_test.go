package metrics

import (
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/opsledger/internal/domain"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.EntriesPosted == nil || m.ApprovalDecisions == nil || m.HTTPRequests == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.EntriesPosted.WithLabelValues("VendorPayment").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewWithRegistryIsolatesRegistries(t *testing.T) {
	first := NewWithRegistry(prometheus.NewRegistry())
	second := NewWithRegistry(prometheus.NewRegistry())

	if first.EventsPublished == second.EventsPublished {
		t.Fatalf("expected separate collectors per registry")
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{nil, "none"},
		{errors.New("boom"), "internal"},
		{domain.ErrAlreadyDecided, "already_decided"},
		{fmt.Errorf("post: %w", domain.ErrOverPayment), "over_payment"},
		{domain.NewFieldError("amount", "required"), "validation_error"},
		{domain.ErrSalaryNotFound, "not_found"},
	}

	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.expected {
			t.Errorf("ErrorType(%v) = %s, want %s", tt.err, got, tt.expected)
		}
	}
}
