package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftEntry() *LedgerEntry {
	return &LedgerEntry{
		ID:            "TXN-1760000000000",
		Category:      EntryCategoryPurchase,
		Amount:        dec("2500.00"),
		DebitAccount:  "5100 Office Supplies",
		CreditAccount: "1000 Cash",
		Status:        EntryStatusDraft,
		PostingDate:   now,
		CreatedBy:     "emp-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestLedgerEntry_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *LedgerEntry)
		field  string
	}{
		{name: "valid", mutate: func(e *LedgerEntry) {}},
		{name: "zero amount", mutate: func(e *LedgerEntry) { e.Amount = decimal.Zero }, field: "amount"},
		{name: "three decimals", mutate: func(e *LedgerEntry) { e.Amount = dec("1.005") }, field: "amount"},
		{name: "same accounts", mutate: func(e *LedgerEntry) { e.CreditAccount = " 5100 office supplies" }, field: "credit_account"},
		{name: "empty debit", mutate: func(e *LedgerEntry) { e.DebitAccount = "" }, field: "debit_account"},
		{name: "bad category", mutate: func(e *LedgerEntry) { e.Category = "Barter" }, field: "category"},
		{name: "no posting date", mutate: func(e *LedgerEntry) { e.PostingDate = time.Time{} }, field: "posting_date"},
		{name: "narration counted in characters", mutate: func(e *LedgerEntry) { e.Narration = strings.Repeat("वे", 250) }},
		{name: "narration too long", mutate: func(e *LedgerEntry) { e.Narration = strings.Repeat("₹", 501) }, field: "narration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := draftEntry()
			tt.mutate(e)

			err := e.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, tt.field, FieldOf(err))
		})
	}
}

func TestLedgerEntry_RequiresApproval(t *testing.T) {
	threshold := dec("100000")

	tests := []struct {
		name     string
		category EntryCategory
		amount   string
		ref      Reference
		want     bool
	}{
		{name: "small purchase", category: EntryCategoryPurchase, amount: "99999.99", want: false},
		{name: "purchase at threshold", category: EntryCategoryPurchase, amount: "100000", want: false},
		{name: "large purchase", category: EntryCategoryPurchase, amount: "100000.01", want: true},
		{name: "large sale", category: EntryCategorySale, amount: "250000", want: true},
		{name: "large internal", category: EntryCategoryInternal, amount: "250000", want: false},
		{name: "salary payout", category: EntryCategoryInternal, amount: "10", ref: SalaryRef{SalaryID: "SAL202610001"}, want: true},
		{name: "liability payment", category: EntryCategoryPurchase, amount: "10", ref: LiabilityRef{LiabilityID: "LIA-1"}, want: true},
		{name: "small vendor payment", category: EntryCategoryPurchase, amount: "10", ref: VendorPaymentRef{PaymentID: "VP-1"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := draftEntry()
			e.Category = tt.category
			e.Amount = dec(tt.amount)
			e.Reference = tt.ref

			if got := e.RequiresApproval(threshold); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLedgerEntry_CheckApproval(t *testing.T) {
	approved := func(c ApprovalCategory) *ApprovalRequest {
		a := validApproval()
		a.Category = c
		a.Status = ApprovalStatusApproved
		a.MaxExpense = dec("2500")
		return a
	}
	capped := func(c ApprovalCategory, max string) *ApprovalRequest {
		a := approved(c)
		a.MaxExpense = dec(max)
		return a
	}
	onHold := validApproval()
	onHold.Status = ApprovalStatusOnHold

	tests := []struct {
		name     string
		ref      Reference
		approval *ApprovalRequest
		wantErr  bool
	}{
		{name: "nil approval", ref: SalaryRef{SalaryID: "S"}, approval: nil, wantErr: true},
		{name: "on hold", ref: LiabilityRef{LiabilityID: "L"}, approval: onHold, wantErr: true},
		{name: "matching category", ref: SalaryRef{SalaryID: "S"}, approval: approved(ApprovalCategorySalary)},
		{name: "mismatched category", ref: SalaryRef{SalaryID: "S"}, approval: approved(ApprovalCategoryAsset), wantErr: true},
		{name: "no reference accepts any category", ref: nil, approval: approved(ApprovalCategoryDepartmentBudget)},
		{name: "amount above max expense", ref: nil, approval: capped(ApprovalCategoryDepartmentBudget, "2499.99"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := draftEntry()
			e.Reference = tt.ref

			err := e.CheckApproval(tt.approval)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrApprovalRequired)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLedgerEntry_Lifecycle(t *testing.T) {
	t.Run("post settled then complete", func(t *testing.T) {
		e := draftEntry()
		require.NoError(t, e.MarkPosted(true, now))
		assert.Equal(t, EntryStatusPosted, e.Status)
		require.NotNil(t, e.PostedAt)

		require.NoError(t, e.MarkCompleted(now))
		assert.Equal(t, EntryStatusCompleted, e.Status)

		_, err := e.MarkCancelled(now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("post with outstanding balance", func(t *testing.T) {
		e := draftEntry()
		require.NoError(t, e.MarkPosted(false, now))
		assert.Equal(t, EntryStatusPartiallyPaid, e.Status)
		assert.True(t, e.Status.IsApplied())
	})

	t.Run("double post", func(t *testing.T) {
		e := draftEntry()
		require.NoError(t, e.MarkPosted(true, now))
		assert.ErrorIs(t, e.MarkPosted(true, now), ErrInvalidTransition)
	})

	t.Run("complete a draft", func(t *testing.T) {
		e := draftEntry()
		assert.ErrorIs(t, e.MarkCompleted(now), ErrInvalidTransition)
	})

	t.Run("cancel draft does not reverse", func(t *testing.T) {
		e := draftEntry()
		applied, err := e.MarkCancelled(now)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.Equal(t, EntryStatusCancelled, e.Status)
	})

	t.Run("cancel posted reverses", func(t *testing.T) {
		e := draftEntry()
		require.NoError(t, e.MarkPosted(false, now))
		applied, err := e.MarkCancelled(now)
		require.NoError(t, err)
		assert.True(t, applied)

		_, err = e.MarkCancelled(now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestLedgerEntry_UpdateDraft(t *testing.T) {
	e := draftEntry()

	err := e.UpdateDraft(dec("10"), "1000 Cash", "1000 Cash", "", now)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !e.Amount.Equal(dec("2500.00")) {
		t.Errorf("failed update must leave the entry untouched, amount %s", e.Amount)
	}

	if err := e.UpdateDraft(dec("10"), "5100 Office Supplies", "2000 Payables", "pens", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.CreditAccount != "2000 Payables" || e.Narration != "pens" {
		t.Errorf("update not applied: %+v", e)
	}

	if err := e.MarkPosted(true, now); err != nil {
		t.Fatalf("post failed: %v", err)
	}
	if err := e.UpdateDraft(dec("20"), "5100 Office Supplies", "2000 Payables", "", now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition editing a posted entry, got %v", err)
	}
}
