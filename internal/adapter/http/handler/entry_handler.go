package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// EntryService defines the behavior needed by EntryHandler.
type EntryService interface {
	CreateEntry(ctx context.Context, actor domain.Actor, input usecase.CreateEntryInput) (*domain.LedgerEntry, error)
	UpdateDraft(ctx context.Context, actor domain.Actor, input usecase.UpdateDraftInput) (*domain.LedgerEntry, error)
	PostEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error)
	CompleteEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error)
	CancelEntry(ctx context.Context, actor domain.Actor, entryID string) (*domain.LedgerEntry, error)
	GetEntry(ctx context.Context, id string) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, filter domain.EntryFilter) ([]*domain.LedgerEntry, error)
}

// EntryHandler handles ledger entry requests.
type EntryHandler struct {
	ledgerUC EntryService
	decoder  requestDecoder
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(ledgerUC EntryService) *EntryHandler {
	return &EntryHandler{ledgerUC: ledgerUC, decoder: newRequestDecoder()}
}

// Create records a Draft entry.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.CreateEntryRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.ledgerUC.CreateEntry(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// UpdateDraft edits a Draft entry.
func (h *EntryHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateDraftRequest
	if err := h.decoder.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	input, err := req.ToUseCaseInput(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := h.ledgerUC.UpdateDraft(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Post applies a Draft entry to its target account.
func (h *EntryHandler) Post(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledgerUC.PostEntry)
}

// Complete finalises a posted entry.
func (h *EntryHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledgerUC.CompleteEntry)
}

// Cancel cancels an entry, reversing its balance effect if applied.
func (h *EntryHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledgerUC.CancelEntry)
}

func (h *EntryHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(context.Context, domain.Actor, string) (*domain.LedgerEntry, error),
) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	entry, err := fn(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.ledgerUC.GetEntry(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries matching the query filters.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	q := r.URL.Query()

	entries, err := h.ledgerUC.ListEntries(r.Context(), domain.EntryFilter{
		Status:        domain.EntryStatus(q.Get("status")),
		Category:      domain.EntryCategory(q.Get("category")),
		ReferenceKind: domain.ReferenceKind(q.Get("reference_type")),
		ReferenceID:   q.Get("reference_id"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListResponse[*dto.EntryResponse]{
		Items:  dto.EntriesFromDomain(entries),
		Limit:  limit,
		Offset: offset,
	})
}
