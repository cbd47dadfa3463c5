package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Approval limits
const (
	MaxReasonLength       = 500
	MaxDecisionNoteLength = 100
)

// ApprovalCategory is the kind of monetary action an approval gates.
type ApprovalCategory string

const (
	ApprovalCategoryAsset            ApprovalCategory = "Asset"
	ApprovalCategoryLiability        ApprovalCategory = "Liability"
	ApprovalCategoryCustomerPayment  ApprovalCategory = "CustomerPayment"
	ApprovalCategoryVendorPayment    ApprovalCategory = "VendorPayment"
	ApprovalCategorySalary           ApprovalCategory = "Salary"
	ApprovalCategoryDepartmentBudget ApprovalCategory = "DepartmentBudget"
	ApprovalCategoryService          ApprovalCategory = "Service"
)

var validApprovalCategories = map[ApprovalCategory]bool{
	ApprovalCategoryAsset:            true,
	ApprovalCategoryLiability:        true,
	ApprovalCategoryCustomerPayment:  true,
	ApprovalCategoryVendorPayment:    true,
	ApprovalCategorySalary:           true,
	ApprovalCategoryDepartmentBudget: true,
	ApprovalCategoryService:          true,
}

// IsValid checks the category is known.
func (c ApprovalCategory) IsValid() bool {
	return validApprovalCategories[c]
}

// Priority of an approval request.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValid checks the priority is known.
func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ApprovalStatus is the decision state of an approval request.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "Pending"
	ApprovalStatusApproved ApprovalStatus = "Approved"
	ApprovalStatusRejected ApprovalStatus = "Rejected"
	ApprovalStatusOnHold   ApprovalStatus = "OnHold"
)

// IsTerminal reports whether no further decision is possible.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusRejected
}

// ApprovalAction is a decision taken by an approver.
type ApprovalAction string

const (
	ApprovalActionAccept ApprovalAction = "accept"
	ApprovalActionReject ApprovalAction = "reject"
	ApprovalActionHold   ApprovalAction = "hold"
)

var approvalTransitions = map[ApprovalStatus]map[ApprovalAction]ApprovalStatus{
	ApprovalStatusPending: {
		ApprovalActionAccept: ApprovalStatusApproved,
		ApprovalActionReject: ApprovalStatusRejected,
		ApprovalActionHold:   ApprovalStatusOnHold,
	},
	ApprovalStatusOnHold: {
		ApprovalActionAccept: ApprovalStatusApproved,
		ApprovalActionReject: ApprovalStatusRejected,
	},
}

// ValidateTransition returns the status reached by applying action to
// current, or ErrInvalidTransition.
func ValidateTransition(current ApprovalStatus, action ApprovalAction) (ApprovalStatus, error) {
	if current.IsTerminal() {
		return current, ErrAlreadyDecided
	}

	next, ok := approvalTransitions[current][action]
	if !ok {
		return current, fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, action, current)
	}

	return next, nil
}

// ApprovalRequest is a decision gate in front of a monetary action.
type ApprovalRequest struct {
	ID            string
	Category      ApprovalCategory
	RequesterID   string
	ApproverID    string
	MinExpense    decimal.Decimal
	MaxExpense    decimal.Decimal
	Priority      Priority
	TentativeDate time.Time
	Reason        string
	Status        ApprovalStatus
	DecisionNote  string
	DecidedBy     string
	DecidedAt     *time.Time
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the request fields that are fixed at creation.
func (a *ApprovalRequest) Validate() error {
	if !a.Category.IsValid() {
		return NewFieldError("category", fmt.Sprintf("unknown category %q", a.Category))
	}
	if a.RequesterID == "" {
		return NewFieldError("requester_id", "required")
	}
	if a.ApproverID == "" {
		return NewFieldError("approver_id", "required")
	}
	if a.ApproverID == a.RequesterID {
		return NewFieldError("approver_id", "requester cannot approve their own request")
	}
	if err := ValidateMoney("min_expense", a.MinExpense); err != nil {
		return err
	}
	if err := ValidateMoney("max_expense", a.MaxExpense); err != nil {
		return err
	}
	if a.MinExpense.GreaterThan(a.MaxExpense) {
		return NewFieldError("min_expense", "must not exceed max_expense")
	}
	if !a.Priority.IsValid() {
		return NewFieldError("priority", fmt.Sprintf("unknown priority %q", a.Priority))
	}
	if a.TentativeDate.IsZero() {
		return NewFieldError("tentative_date", "required")
	}
	return ValidateReason(a.Reason)
}

// ValidateReason checks a request reason is present and bounded.
func ValidateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return NewFieldError("reason", "required")
	}
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		return NewFieldError("reason", fmt.Sprintf("exceeds %d characters", MaxReasonLength))
	}
	return nil
}

// ValidateDecisionNote checks a decision note is bounded. Notes over the
// limit are rejected, never truncated.
func ValidateDecisionNote(note string) error {
	if utf8.RuneCountInString(note) > MaxDecisionNoteLength {
		return NewFieldError("note", fmt.Sprintf("exceeds %d characters", MaxDecisionNoteLength))
	}
	return nil
}

// CanBeDecidedBy reports whether actor may decide this request.
func (a *ApprovalRequest) CanBeDecidedBy(actor Actor) bool {
	if actor.Validate() != nil {
		return false
	}
	return actor.EmployeeID == a.ApproverID || actor.Role.HasApprovalAuthority()
}

// Decide applies action on behalf of actor, recording note, actor and time.
func (a *ApprovalRequest) Decide(actor Actor, action ApprovalAction, note string, at time.Time) error {
	if !a.CanBeDecidedBy(actor) {
		return ErrUnauthorized
	}
	if err := ValidateDecisionNote(note); err != nil {
		return err
	}

	next, err := ValidateTransition(a.Status, action)
	if err != nil {
		return err
	}

	decidedAt := at
	a.Status = next
	a.DecisionNote = note
	a.DecidedBy = actor.EmployeeID
	a.DecidedAt = &decidedAt
	a.UpdatedAt = at

	return nil
}

// IsApproved reports whether the request clears its gate.
func (a *ApprovalRequest) IsApproved() bool {
	return a.Status == ApprovalStatusApproved
}

// CoversAmount reports ErrApprovalRequired when amount is above the
// approved MaxExpense.
func (a *ApprovalRequest) CoversAmount(amount decimal.Decimal) error {
	if amount.GreaterThan(a.MaxExpense) {
		return fmt.Errorf("%w: amount %s exceeds approval %s max expense %s",
			ErrApprovalRequired, amount, a.ID, a.MaxExpense)
	}
	return nil
}

// IsStaleHold reports whether an OnHold request has waited longer than ttl.
// A zero ttl disables hold expiry.
func (a *ApprovalRequest) IsStaleHold(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || a.Status != ApprovalStatusOnHold || a.DecidedAt == nil {
		return false
	}
	return now.Sub(*a.DecidedAt) > ttl
}

// ApprovalFilter narrows approval listings. Empty fields match everything.
type ApprovalFilter struct {
	Status      ApprovalStatus
	Category    ApprovalCategory
	RequesterID string
	ApproverID  string
	Limit       int
	Offset      int
}

// Matches reports whether a satisfies the filter.
func (f ApprovalFilter) Matches(a *ApprovalRequest) bool {
	return (f.Status == "" || a.Status == f.Status) &&
		(f.Category == "" || a.Category == f.Category) &&
		(f.RequesterID == "" || a.RequesterID == f.RequesterID) &&
		(f.ApproverID == "" || a.ApproverID == f.ApproverID)
}
