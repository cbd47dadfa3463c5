package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// SalaryService defines the behavior needed by SalaryHandler.
type SalaryService interface {
	CreateSalary(ctx context.Context, actor domain.Actor, input usecase.CreateSalaryInput) (*domain.SalaryRecord, error)
	UpdateSalaryComponents(ctx context.Context, actor domain.Actor, salaryID string, input usecase.SalaryComponentsInput) (*domain.SalaryRecord, error)
	MarkInProcess(ctx context.Context, actor domain.Actor, salaryID string) (*domain.SalaryRecord, error)
	GetSalary(ctx context.Context, id string) (*domain.SalaryRecord, error)
	ListSalaries(ctx context.Context, filter domain.SalaryFilter) ([]*domain.SalaryRecord, error)
}

// SalaryHandler handles salary record requests.
type SalaryHandler struct {
	salaryUC SalaryService
	decoder  requestDecoder
}

// NewSalaryHandler creates a new SalaryHandler.
func NewSalaryHandler(salaryUC SalaryService) *SalaryHandler {
	return &SalaryHandler{salaryUC: salaryUC, decoder: newRequestDecoder()}
}

// Create records a Pending salary for an employee and month.
func (h *SalaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateSalaryRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	salary, err := h.salaryUC.CreateSalary(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SalaryFromDomain(salary))
}

// UpdateComponents replaces the pay components of a Pending salary.
func (h *SalaryHandler) UpdateComponents(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.SalaryComponentsRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	salary, err := h.salaryUC.UpdateSalaryComponents(r.Context(), actor, chi.URLParam(r, "id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SalaryFromDomain(salary))
}

// MarkInProcess moves a salary from Pending to In-Process.
func (h *SalaryHandler) MarkInProcess(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	salary, err := h.salaryUC.MarkInProcess(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SalaryFromDomain(salary))
}

// Get retrieves a salary by ID.
func (h *SalaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	salary, err := h.salaryUC.GetSalary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SalaryFromDomain(salary))
}

// List lists salaries. pay_month uses the YYYY-MM form.
func (h *SalaryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	q := r.URL.Query()

	filter := domain.SalaryFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     domain.SalaryPaymentStatus(q.Get("status")),
		Limit:      limit,
		Offset:     offset,
	}
	if raw := q.Get("pay_month"); raw != "" {
		month, err := time.Parse(dto.MonthLayout, raw)
		if err != nil {
			writeError(w, domain.NewFieldError("pay_month", "must use YYYY-MM"))
			return
		}
		filter.PayMonth = &month
	}

	salaries, err := h.salaryUC.ListSalaries(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.SalaryResponse]{
		Items:  dto.SalariesFromDomain(salaries),
		Limit:  limit,
		Offset: offset,
	})
}
