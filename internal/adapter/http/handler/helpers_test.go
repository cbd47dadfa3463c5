package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/adapter/http/middleware"
	"github.com/iho/opsledger/internal/domain"
)

var testOperator = domain.Actor{EmployeeID: "emp-1", Role: domain.RoleOperator}

// newRequest builds a request carrying actor and the chi URL param id.
func newRequest(method, target, body string, actor *domain.Actor, id string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))

	ctx := req.Context()
	if actor != nil {
		ctx = middleware.WithActor(ctx, *actor)
	}
	if id != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewFieldError("amount", "must be positive"), http.StatusBadRequest},
		{domain.ErrEntryNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusForbidden},
		{domain.ErrAlreadyDecided, http.StatusConflict},
		{fmt.Errorf("save: %w", domain.ErrConflict), http.StatusConflict},
		{domain.ErrApprovalRequired, http.StatusUnprocessableEntity},
		{domain.ErrOverPayment, http.StatusUnprocessableEntity},
		{domain.ErrInvalidRate, http.StatusUnprocessableEntity},
		{domain.ErrInvalidSalaryComposition, http.StatusUnprocessableEntity},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWriteError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeError(t, rec)
	if resp.Error != "internal" || strings.Contains(resp.Message, "pq") {
		t.Fatalf("expected generic internal error, got %+v", resp)
	}
}

func TestWriteError_FieldError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domain.NewFieldError("due_date", "required"))

	resp := decodeError(t, rec)
	if resp.Error != "validation_error" || resp.Field != "due_date" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	d := newRequestDecoder()
	req := newRequest(http.MethodPost, "/", `{"action":"accept","extra":1}`, nil, "")

	var dst dto.DecideApprovalRequest
	err := d.decode(httptest.NewRecorder(), req, &dst)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecode_RunsValidation(t *testing.T) {
	d := newRequestDecoder()
	req := newRequest(http.MethodPost, "/", `{"action":"approve"}`, nil, "")

	var dst dto.DecideApprovalRequest
	err := d.decode(httptest.NewRecorder(), req, &dst)
	if domain.FieldOf(err) != "action" {
		t.Fatalf("expected action field error, got %v", err)
	}
}

func TestActorFrom_Missing(t *testing.T) {
	_, err := actorFrom(httptest.NewRequest(http.MethodGet, "/", nil))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPage(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", domain.DefaultPageSize, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=abc", domain.DefaultPageSize, 0},
		{"?limit=100000", domain.MaxPageSize, 0},
		{"?offset=-3", domain.DefaultPageSize, 0},
	}

	for _, tt := range tests {
		limit, offset := page(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
		if limit != tt.wantLimit || offset != tt.wantOffset {
			t.Errorf("page(%q) = (%d, %d), want (%d, %d)", tt.query, limit, offset, tt.wantLimit, tt.wantOffset)
		}
	}
}
