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

// VendorPaymentService defines the behavior needed by VendorPaymentHandler.
type VendorPaymentService interface {
	CreateVendorPayment(ctx context.Context, actor domain.Actor, input usecase.CreateVendorPaymentInput) (*domain.VendorPaymentAccount, error)
	UpdateConversion(ctx context.Context, actor domain.Actor, input usecase.UpdateConversionInput) (*domain.VendorPaymentAccount, error)
	GetVendorPayment(ctx context.Context, id string) (*domain.VendorPaymentAccount, error)
	ListVendorPayments(ctx context.Context, limit, offset int) ([]*domain.VendorPaymentAccount, error)
}

// VendorPaymentHandler handles vendor payment account requests.
type VendorPaymentHandler struct {
	vendorUC VendorPaymentService
	decoder  requestDecoder
	now      func() time.Time
}

// NewVendorPaymentHandler creates a new VendorPaymentHandler.
func NewVendorPaymentHandler(vendorUC VendorPaymentService) *VendorPaymentHandler {
	return &VendorPaymentHandler{vendorUC: vendorUC, decoder: newRequestDecoder(), now: time.Now}
}

// Create opens a vendor payment account.
func (h *VendorPaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateVendorPaymentRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.vendorUC.CreateVendorPayment(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.VendorPaymentFromDomain(payment, h.now()))
}

// UpdateConversion changes the foreign amount or rate and recomputes the
// local amount.
func (h *VendorPaymentHandler) UpdateConversion(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateConversionRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	payment, err := h.vendorUC.UpdateConversion(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VendorPaymentFromDomain(payment, h.now()))
}

// Get retrieves a vendor payment account by ID.
func (h *VendorPaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	payment, err := h.vendorUC.GetVendorPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VendorPaymentFromDomain(payment, h.now()))
}

// List lists vendor payment accounts.
func (h *VendorPaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	payments, err := h.vendorUC.ListVendorPayments(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.VendorPaymentResponse]{
		Items:  dto.VendorPaymentsFromDomain(payments, h.now()),
		Limit:  limit,
		Offset: offset,
	})
}

// LiabilityService defines the behavior needed by LiabilityHandler.
type LiabilityService interface {
	CreateLiability(ctx context.Context, actor domain.Actor, input usecase.CreateLiabilityInput) (*domain.LiabilityAccount, error)
	GetLiability(ctx context.Context, id string) (*domain.LiabilityAccount, error)
	ListLiabilities(ctx context.Context, limit, offset int) ([]*domain.LiabilityAccount, error)
}

// LiabilityHandler handles liability account requests.
type LiabilityHandler struct {
	liabilityUC LiabilityService
	decoder     requestDecoder
}

// NewLiabilityHandler creates a new LiabilityHandler.
func NewLiabilityHandler(liabilityUC LiabilityService) *LiabilityHandler {
	return &LiabilityHandler{liabilityUC: liabilityUC, decoder: newRequestDecoder()}
}

// Create records a liability from an accepted approval.
func (h *LiabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateLiabilityRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	liability, err := h.liabilityUC.CreateLiability(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.LiabilityFromDomain(liability))
}

// Get retrieves a liability by ID.
func (h *LiabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	liability, err := h.liabilityUC.GetLiability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LiabilityFromDomain(liability))
}

// List lists liabilities.
func (h *LiabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	liabilities, err := h.liabilityUC.ListLiabilities(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.LiabilityResponse]{
		Items:  dto.LiabilitiesFromDomain(liabilities),
		Limit:  limit,
		Offset: offset,
	})
}
