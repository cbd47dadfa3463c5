package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// ApprovalService defines the behavior needed by ApprovalHandler.
type ApprovalService interface {
	EligibleApprovers(ctx context.Context, requesterID string) ([]usecase.Approver, error)
	CreateApproval(ctx context.Context, actor domain.Actor, input usecase.CreateApprovalInput) (*domain.ApprovalRequest, error)
	Decide(ctx context.Context, actor domain.Actor, input usecase.DecideInput) (*domain.ApprovalRequest, error)
	GetApproval(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	ListApprovals(ctx context.Context, filter domain.ApprovalFilter) ([]*domain.ApprovalRequest, error)
	ListStaleHolds(ctx context.Context) ([]*domain.ApprovalRequest, error)
}

// ApprovalHandler handles approval workflow requests.
type ApprovalHandler struct {
	approvalUC ApprovalService
	decoder    requestDecoder
}

// NewApprovalHandler creates a new ApprovalHandler.
func NewApprovalHandler(approvalUC ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalUC: approvalUC, decoder: newRequestDecoder()}
}

// Approvers lists who may approve for a requester, the caller by default.
func (h *ApprovalHandler) Approvers(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requester_id")
	if requesterID == "" {
		actor, err := actorFrom(r)
		if err != nil {
			writeError(w, err)
			return
		}
		requesterID = actor.EmployeeID
	}

	approvers, err := h.approvalUC.EligibleApprovers(r.Context(), requesterID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApproversFromUseCase(approvers))
}

// Create raises an approval request on behalf of the caller.
func (h *ApprovalHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateApprovalRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	approval, err := h.approvalUC.CreateApproval(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ApprovalFromDomain(approval))
}

// Decide accepts, rejects or holds an approval.
func (h *ApprovalHandler) Decide(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.DecideApprovalRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	approval, err := h.approvalUC.Decide(r.Context(), actor, req.ToUseCaseInput(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromDomain(approval))
}

// Get retrieves an approval by ID.
func (h *ApprovalHandler) Get(w http.ResponseWriter, r *http.Request) {
	approval, err := h.approvalUC.GetApproval(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalFromDomain(approval))
}

// List lists approvals matching the query filters.
func (h *ApprovalHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	q := r.URL.Query()

	approvals, err := h.approvalUC.ListApprovals(r.Context(), domain.ApprovalFilter{
		Status:      domain.ApprovalStatus(q.Get("status")),
		Category:    domain.ApprovalCategory(q.Get("category")),
		RequesterID: q.Get("requester_id"),
		ApproverID:  q.Get("approver_id"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.ApprovalResponse]{
		Items:  dto.ApprovalsFromDomain(approvals),
		Limit:  limit,
		Offset: offset,
	})
}

// StaleHolds lists OnHold approvals older than the configured hold TTL.
func (h *ApprovalHandler) StaleHolds(w http.ResponseWriter, r *http.Request) {
	approvals, err := h.approvalUC.ListStaleHolds(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ApprovalsFromDomain(approvals))
}
