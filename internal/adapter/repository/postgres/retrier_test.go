package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/opsledger/internal/domain"
)

func fastRetrier(maxRetries int) *Retrier {
	r := NewRetrier(zerolog.Nop())
	r.maxRetries = maxRetries
	r.initialInterval = 1 * time.Millisecond
	r.maxInterval = 2 * time.Millisecond
	r.maxElapsedTime = time.Second
	return r
}

func TestRetrierRetriesOnRetryableError(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: pgErrDeadlock}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestRetrierStopsOnPermanentError(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	attempts := 0
	permanentErr := errors.New("permanent")

	err := r.Retry(context.Background(), func() error {
		attempts++
		return permanentErr
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestRetrierExhaustedSurfacesConflict(t *testing.T) {
	r := fastRetrier(2)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrSerializationFailure}
	})

	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestRetrierDoesNotRetryDomainErrors(t *testing.T) {
	r := fastRetrier(3)

	attempts := 0
	err := r.Retry(context.Background(), func() error {
		attempts++
		return domain.ErrOverPayment
	})

	if !errors.Is(err, domain.ErrOverPayment) {
		t.Fatalf("expected over payment, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", &pgconn.PgError{Code: pgErrDeadlock}, true},
		{"serialization failure", &pgconn.PgError{Code: pgErrSerializationFailure}, true},
		{"lock timeout", &pgconn.PgError{Code: pgErrLockNotAvailable}, true},
		{"wrapped deadlock", fmt.Errorf("post entry: %w", &pgconn.PgError{Code: pgErrDeadlock}), true},
		{"unique violation", &pgconn.PgError{Code: pgErrUniqueViolation}, false},
		{"plain error", errors.New("other"), false},
		{"domain error", domain.ErrOverPayment, false},
	}

	for _, tc := range cases {
		if got := isRetryableError(tc.err); got != tc.want {
			t.Errorf("%s: isRetryableError = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRetrierStopsWhenContextCancelled(t *testing.T) {
	r := fastRetrier(50)
	r.initialInterval = 20 * time.Millisecond
	r.maxInterval = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	attempts := 0
	err := r.Retry(ctx, func() error {
		attempts++
		return &pgconn.PgError{Code: pgErrLockNotAvailable}
	})

	if err == nil {
		t.Fatalf("expected an error once the context expired")
	}
	if attempts >= 50 {
		t.Fatalf("expected cancellation to cut retries short, got %d attempts", attempts)
	}
}
