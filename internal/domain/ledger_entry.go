package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// EntryCategory classifies a ledger entry.
type EntryCategory string

const (
	EntryCategoryPurchase EntryCategory = "Purchase"
	EntryCategorySale     EntryCategory = "Sale"
	EntryCategoryInternal EntryCategory = "Internal"
)

// IsValid checks the category is known.
func (c EntryCategory) IsValid() bool {
	return c == EntryCategoryPurchase || c == EntryCategorySale || c == EntryCategoryInternal
}

// EntryStatus is the lifecycle state of a ledger entry.
type EntryStatus string

const (
	// EntryStatusDraft is being composed; nothing has been applied.
	EntryStatusDraft EntryStatus = "Draft"
	// EntryStatusPosted has its balance update applied and is awaiting completion.
	EntryStatusPosted EntryStatus = "Posted"
	// EntryStatusPartiallyPaid is posted against a target that still has an outstanding amount.
	EntryStatusPartiallyPaid EntryStatus = "PartiallyPaid"
	EntryStatusCompleted     EntryStatus = "Completed"
	EntryStatusCancelled     EntryStatus = "Cancelled"
)

// IsApplied reports whether the entry's balance update is in effect.
func (s EntryStatus) IsApplied() bool {
	return s == EntryStatusPosted || s == EntryStatusPartiallyPaid || s == EntryStatusCompleted
}

const MaxNarrationLength = 500

// LedgerEntry is a recorded monetary movement between two accounts.
type LedgerEntry struct {
	ID            string
	Category      EntryCategory
	Subtype       string
	Amount        decimal.Decimal
	DebitAccount  string
	CreditAccount string
	Status        EntryStatus
	Narration     string
	PostingDate   time.Time
	Reference     Reference
	ApprovalID    *string
	CreatedBy     string
	PostedAt      *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the fields that must hold before an entry can exist.
func (e *LedgerEntry) Validate() error {
	if !e.Category.IsValid() {
		return NewFieldError("category", fmt.Sprintf("unknown category %q", e.Category))
	}
	if err := ValidatePositiveMoney("amount", e.Amount); err != nil {
		return err
	}
	if err := ValidateAccountCode("debit_account", e.DebitAccount); err != nil {
		return err
	}
	if err := ValidateAccountCode("credit_account", e.CreditAccount); err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(e.DebitAccount), strings.TrimSpace(e.CreditAccount)) {
		return NewFieldError("credit_account", "must differ from debit_account")
	}
	if utf8.RuneCountInString(e.Narration) > MaxNarrationLength {
		return NewFieldError("narration", fmt.Sprintf("exceeds %d characters", MaxNarrationLength))
	}
	if e.PostingDate.IsZero() {
		return NewFieldError("posting_date", "required")
	}
	return nil
}

// RequiresApproval reports whether the entry may only exist with an Approved
// request behind it. Salary and liability payouts always do; purchases and
// sales do once their amount exceeds threshold.
func (e *LedgerEntry) RequiresApproval(threshold decimal.Decimal) bool {
	switch e.Reference.(type) {
	case SalaryRef, LiabilityRef:
		return true
	}

	switch e.Category {
	case EntryCategoryPurchase, EntryCategorySale:
		return e.Amount.GreaterThan(threshold)
	default:
		return false
	}
}

// CheckApproval verifies approval clears the gate for this entry.
func (e *LedgerEntry) CheckApproval(approval *ApprovalRequest) error {
	if approval == nil {
		return fmt.Errorf("%w: entry needs an approved request", ErrApprovalRequired)
	}
	if !approval.IsApproved() {
		return fmt.Errorf("%w: approval %s is %s", ErrApprovalRequired, approval.ID, approval.Status)
	}
	if want, ok := ApprovalCategoryFor(e.Reference); ok && approval.Category != want {
		return fmt.Errorf("%w: approval %s is for %s, entry settles %s", ErrApprovalRequired, approval.ID, approval.Category, want)
	}
	return approval.CoversAmount(e.Amount)
}

// UpdateDraft replaces the editable fields of a draft entry.
func (e *LedgerEntry) UpdateDraft(amount decimal.Decimal, debit, credit, narration string, at time.Time) error {
	if e.Status != EntryStatusDraft {
		return fmt.Errorf("%w: entry %s is %s, only drafts can be edited", ErrInvalidTransition, e.ID, e.Status)
	}

	next := *e
	next.Amount = amount
	next.DebitAccount = debit
	next.CreditAccount = credit
	next.Narration = narration
	if err := next.Validate(); err != nil {
		return err
	}

	next.UpdatedAt = at
	*e = next
	return nil
}

// MarkPosted records that the balance update has been applied. settled tells
// whether the target has nothing left outstanding.
func (e *LedgerEntry) MarkPosted(settled bool, at time.Time) error {
	if e.Status != EntryStatusDraft {
		return fmt.Errorf("%w: entry %s is %s, only drafts can be posted", ErrInvalidTransition, e.ID, e.Status)
	}

	e.Status = EntryStatusPartiallyPaid
	if settled {
		e.Status = EntryStatusPosted
	}
	postedAt := at
	e.PostedAt = &postedAt
	e.UpdatedAt = at

	return nil
}

// MarkCompleted finalises a posted entry; its amount is fixed from here on.
func (e *LedgerEntry) MarkCompleted(at time.Time) error {
	if e.Status != EntryStatusPosted && e.Status != EntryStatusPartiallyPaid {
		return fmt.Errorf("%w: entry %s is %s, only posted entries can be completed", ErrInvalidTransition, e.ID, e.Status)
	}

	e.Status = EntryStatusCompleted
	completedAt := at
	e.CompletedAt = &completedAt
	e.UpdatedAt = at

	return nil
}

// MarkCancelled cancels a draft or posted entry. The caller reverses the
// balance update when wasApplied is true.
func (e *LedgerEntry) MarkCancelled(at time.Time) (wasApplied bool, err error) {
	switch e.Status {
	case EntryStatusDraft:
	case EntryStatusPosted, EntryStatusPartiallyPaid:
		wasApplied = true
	default:
		return false, fmt.Errorf("%w: entry %s is %s and cannot be cancelled", ErrInvalidTransition, e.ID, e.Status)
	}

	e.Status = EntryStatusCancelled
	cancelledAt := at
	e.CancelledAt = &cancelledAt
	e.UpdatedAt = at

	return wasApplied, nil
}

// EntryFilter narrows ledger entry listings. Empty fields match everything.
type EntryFilter struct {
	Status        EntryStatus
	Category      EntryCategory
	ReferenceKind ReferenceKind
	ReferenceID   string
	Limit         int
	Offset        int
}

// Matches reports whether e satisfies the filter.
func (f EntryFilter) Matches(e *LedgerEntry) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.ReferenceKind != "" && (e.Reference == nil || e.Reference.Kind() != f.ReferenceKind) {
		return false
	}
	if f.ReferenceID != "" && (e.Reference == nil || e.Reference.TargetID() != f.ReferenceID) {
		return false
	}
	return true
}
