package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

type approvalServiceStub struct {
	approversFn func(ctx context.Context, requesterID string) ([]usecase.Approver, error)
	createFn    func(ctx context.Context, actor domain.Actor, input usecase.CreateApprovalInput) (*domain.ApprovalRequest, error)
	decideFn    func(ctx context.Context, actor domain.Actor, input usecase.DecideInput) (*domain.ApprovalRequest, error)
	getFn       func(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	listFn      func(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error)
	staleFn     func(ctx context.Context) ([]*domain.ApprovalRequest, error)
}

func (s *approvalServiceStub) EligibleApprovers(ctx context.Context, requesterID string) ([]usecase.Approver, error) {
	return s.approversFn(ctx, requesterID)
}

func (s *approvalServiceStub) CreateApproval(ctx context.Context, actor domain.Actor, input usecase.CreateApprovalInput) (*domain.ApprovalRequest, error) {
	return s.createFn(ctx, actor, input)
}

func (s *approvalServiceStub) Decide(ctx context.Context, actor domain.Actor, input usecase.DecideInput) (*domain.ApprovalRequest, error) {
	return s.decideFn(ctx, actor, input)
}

func (s *approvalServiceStub) GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return s.getFn(ctx, id)
}

func (s *approvalServiceStub) ListApprovals(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
	return s.listFn(ctx, filter)
}

func (s *approvalServiceStub) ListStaleHolds(ctx context.Context) ([]*domain.ApprovalRequest, error) {
	return s.staleFn(ctx)
}

func sampleApproval() *domain.ApprovalRequest {
	return &domain.ApprovalRequest{
		ID:            "apr-1",
		Category:      domain.ApprovalCategoryLiability,
		RequesterID:   "emp-1",
		ApproverID:    "emp-9",
		MinExpense:    decimal.NewFromInt(100),
		MaxExpense:    decimal.NewFromInt(500),
		Priority:      domain.PriorityHigh,
		TentativeDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Reason:        "bank loan",
		Status:        domain.ApprovalStatusPending,
	}
}

func TestApprovalHandler_Create_Success(t *testing.T) {
	var captured usecase.CreateApprovalInput
	var capturedActor domain.Actor
	h := NewApprovalHandler(&approvalServiceStub{
		createFn: func(ctx context.Context, actor domain.Actor, input usecase.CreateApprovalInput) (*domain.ApprovalRequest, error) {
			captured = input
			capturedActor = actor
			return sampleApproval(), nil
		},
	})

	body := `{"category":"Liability","approver_id":"emp-9","min_expense":"100","max_expense":"500",
		"priority":"High","tentative_date":"2026-03-01","reason":"bank loan"}`
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/approvals", body, &testOperator, ""))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedActor != testOperator {
		t.Fatalf("expected actor from context, got %+v", capturedActor)
	}
	if !captured.MaxExpense.Equal(decimal.NewFromInt(500)) || captured.ApproverID != "emp-9" {
		t.Fatalf("unexpected input: %+v", captured)
	}

	var resp dto.ApprovalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "apr-1" || resp.MaxExpense != "500.00" || resp.TentativeDate != "2026-03-01" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApprovalHandler_Create_Unauthenticated(t *testing.T) {
	h := NewApprovalHandler(&approvalServiceStub{})

	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/approvals", `{}`, nil, ""))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestApprovalHandler_Create_InvalidPayload(t *testing.T) {
	h := NewApprovalHandler(&approvalServiceStub{
		createFn: func(ctx context.Context, actor domain.Actor, input usecase.CreateApprovalInput) (*domain.ApprovalRequest, error) {
			t.Fatal("CreateApproval should not be called for invalid payload")
			return nil, nil
		},
	})

	body := `{"category":"Liability","approver_id":"emp-9","min_expense":"100","max_expense":"500",
		"priority":"Urgent","tentative_date":"2026-03-01","reason":"x"}`
	rec := httptest.NewRecorder()
	h.Create(rec, newRequest(http.MethodPost, "/approvals", body, &testOperator, ""))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if field := decodeError(t, rec).Field; field != "priority" {
		t.Fatalf("expected priority field error, got %q", field)
	}
}

func TestApprovalHandler_Decide(t *testing.T) {
	var captured usecase.DecideInput
	h := NewApprovalHandler(&approvalServiceStub{
		decideFn: func(ctx context.Context, actor domain.Actor, input usecase.DecideInput) (*domain.ApprovalRequest, error) {
			captured = input
			a := sampleApproval()
			a.Status = domain.ApprovalStatusApproved
			return a, nil
		},
	})

	admin := domain.Actor{EmployeeID: "emp-9", Role: domain.RoleAdmin}
	rec := httptest.NewRecorder()
	h.Decide(rec, newRequest(http.MethodPost, "/approvals/apr-1/decision", `{"action":"accept","note":"ok"}`, &admin, "apr-1"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ApprovalID != "apr-1" || captured.Action != domain.ApprovalActionAccept || captured.Note != "ok" {
		t.Fatalf("unexpected input: %+v", captured)
	}
}

func TestApprovalHandler_Decide_AlreadyDecided(t *testing.T) {
	h := NewApprovalHandler(&approvalServiceStub{
		decideFn: func(ctx context.Context, actor domain.Actor, input usecase.DecideInput) (*domain.ApprovalRequest, error) {
			return nil, domain.ErrAlreadyDecided
		},
	})

	rec := httptest.NewRecorder()
	h.Decide(rec, newRequest(http.MethodPost, "/approvals/apr-1/decision", `{"action":"reject"}`, &testOperator, "apr-1"))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if kind := decodeError(t, rec).Error; kind != "already_decided" {
		t.Fatalf("expected already_decided, got %q", kind)
	}
}

func TestApprovalHandler_Get_NotFound(t *testing.T) {
	h := NewApprovalHandler(&approvalServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
			return nil, domain.ErrApprovalNotFound
		},
	})

	rec := httptest.NewRecorder()
	h.Get(rec, newRequest(http.MethodGet, "/approvals/missing", "", nil, "missing"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestApprovalHandler_List_PassesFilters(t *testing.T) {
	var captured domain.ApprovalFilter
	h := NewApprovalHandler(&approvalServiceStub{
		listFn: func(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error) {
			captured = filter
			return []*domain.ApprovalRequest{sampleApproval()}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.List(rec, newRequest(http.MethodGet, "/approvals?status=Pending&approver_id=emp-9&limit=10", "", nil, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if captured.Status != domain.ApprovalStatusPending || captured.ApproverID != "emp-9" || captured.Limit != 10 {
		t.Fatalf("unexpected filter: %+v", captured)
	}

	var resp dto.ListResponse[*dto.ApprovalResponse]
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Limit != 10 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApprovalHandler_Approvers_DefaultsToCaller(t *testing.T) {
	var requester string
	h := NewApprovalHandler(&approvalServiceStub{
		approversFn: func(ctx context.Context, requesterID string) ([]usecase.Approver, error) {
			requester = requesterID
			return []usecase.Approver{{EmployeeID: "emp-9", Label: "Dana (Finance)"}}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Approvers(rec, newRequest(http.MethodGet, "/approvers", "", &testOperator, ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if requester != testOperator.EmployeeID {
		t.Fatalf("expected requester %s, got %s", testOperator.EmployeeID, requester)
	}

	var resp []dto.ApproverResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Label != "Dana (Finance)" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestApprovalHandler_Approvers_ExplicitRequester(t *testing.T) {
	var requester string
	h := NewApprovalHandler(&approvalServiceStub{
		approversFn: func(ctx context.Context, requesterID string) ([]usecase.Approver, error) {
			requester = requesterID
			return nil, nil
		},
	})

	rec := httptest.NewRecorder()
	h.Approvers(rec, newRequest(http.MethodGet, "/approvers?requester_id=emp-4", "", nil, ""))

	if rec.Code != http.StatusOK || requester != "emp-4" {
		t.Fatalf("expected lookup for emp-4, got %d %q", rec.Code, requester)
	}
}

func TestApprovalHandler_StaleHolds(t *testing.T) {
	h := NewApprovalHandler(&approvalServiceStub{
		staleFn: func(ctx context.Context) ([]*domain.ApprovalRequest, error) {
			a := sampleApproval()
			a.Status = domain.ApprovalStatusOnHold
			return []*domain.ApprovalRequest{a}, nil
		},
	})

	rec := httptest.NewRecorder()
	h.StaleHolds(rec, newRequest(http.MethodGet, "/approvals/stale-holds", "", nil, ""))

	var resp []dto.ApprovalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].Status != string(domain.ApprovalStatusOnHold) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
