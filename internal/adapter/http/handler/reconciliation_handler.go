package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileVendorPayment(ctx context.Context, id string) (*usecase.ReconciliationResult, error)
	ReconcileLiability(ctx context.Context, id string) (*usecase.ReconciliationResult, error)
	ReconcileSalary(ctx context.Context, id string) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// ReconciliationHandler compares account balances with their entries.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

func (h *ReconciliationHandler) VendorPayment(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, h.reconUC.ReconcileVendorPayment)
}

func (h *ReconciliationHandler) Liability(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, h.reconUC.ReconcileLiability)
}

func (h *ReconciliationHandler) Salary(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, h.reconUC.ReconcileSalary)
}

func (h *ReconciliationHandler) reconcile(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, string) (*usecase.ReconciliationResult, error),
) {
	result, err := fn(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationResultFromUseCase(result))
}

// Report reconciles every account.
func (h *ReconciliationHandler) Report(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconUC.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromUseCase(report))
}
