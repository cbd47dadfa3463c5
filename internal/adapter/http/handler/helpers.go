package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/adapter/http/middleware"
	"github.com/iho/opsledger/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes err as an error response. Errors outside the domain
// taxonomy are reported without detail.
func writeError(w http.ResponseWriter, err error) {
	status := mapDomainError(err)

	resp := dto.ErrorResponse{
		Error: domain.KindOf(err),
		Field: domain.FieldOf(err),
	}
	if resp.Error == "" {
		resp.Error = "internal"
		resp.Message = "internal server error"
	} else {
		resp.Message = err.Error()
	}

	writeJSON(w, status, resp)
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrApprovalRequired),
		errors.Is(err, domain.ErrOverPayment),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidSalaryComposition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// requestDecoder decodes and validates JSON request bodies.
type requestDecoder struct {
	validator *dto.Validator
}

func newRequestDecoder() requestDecoder {
	return requestDecoder{validator: dto.NewValidator()}
}

// decode reads r's body into dst and validates it. Malformed JSON is a
// validation error.
func (d requestDecoder) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrValidation, err)
	}

	return d.validator.Struct(dst)
}

// actorFrom returns the authenticated actor of r.
func actorFrom(r *http.Request) (domain.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return actor, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// page reads limit and offset, clamped to the allowed range.
func page(r *http.Request) (int, int) {
	return domain.ValidatePagination(parseIntQuery(r, "limit", domain.DefaultPageSize), parseIntQuery(r, "offset", 0))
}
