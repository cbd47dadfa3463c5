package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this module wraps exactly one of these.
var (
	ErrValidation               = errors.New("validation error")
	ErrNotFound                 = errors.New("not found")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrInvalidTransition        = errors.New("invalid transition")
	ErrApprovalRequired         = errors.New("approval required")
	ErrOverPayment              = errors.New("payment exceeds outstanding amount")
	ErrInvalidRate              = errors.New("exchange rate must be positive")
	ErrInvalidSalaryComposition = errors.New("deduction exceeds base salary plus bonus")
	ErrConflict                 = errors.New("concurrent modification")
)

var (
	// ErrAlreadyDecided is returned when a terminal approval is decided again.
	ErrAlreadyDecided = fmt.Errorf("%w: approval already decided", ErrInvalidTransition)

	ErrApprovalNotFound       = fmt.Errorf("approval %w", ErrNotFound)
	ErrEmployeeNotFound       = fmt.Errorf("employee %w", ErrNotFound)
	ErrEntryNotFound          = fmt.Errorf("ledger entry %w", ErrNotFound)
	ErrVendorPaymentNotFound  = fmt.Errorf("vendor payment %w", ErrNotFound)
	ErrLiabilityNotFound      = fmt.Errorf("liability %w", ErrNotFound)
	ErrSalaryNotFound         = fmt.Errorf("salary record %w", ErrNotFound)
	ErrReferenceTargetMissing = fmt.Errorf("reference target %w", ErrNotFound)
)

// FieldError is a ValidationError pointing at the offending input field.
type FieldError struct {
	Field  string
	Reason string
}

// NewFieldError creates a FieldError.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

// FieldOf returns the offending field of a validation error, if any.
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

// KindOf names the error kind err belongs to, or "" for errors outside the
// taxonomy.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAlreadyDecided):
		return "already_decided"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrApprovalRequired):
		return "approval_required"
	case errors.Is(err, ErrOverPayment):
		return "over_payment"
	case errors.Is(err, ErrInvalidRate):
		return "invalid_rate"
	case errors.Is(err, ErrInvalidSalaryComposition):
		return "invalid_salary_composition"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return ""
	}
}
