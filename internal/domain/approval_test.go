package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name        string
		current     ApprovalStatus
		action      ApprovalAction
		expected    ApprovalStatus
		expectError error
	}{
		{name: "pending accept", current: ApprovalStatusPending, action: ApprovalActionAccept, expected: ApprovalStatusApproved},
		{name: "pending reject", current: ApprovalStatusPending, action: ApprovalActionReject, expected: ApprovalStatusRejected},
		{name: "pending hold", current: ApprovalStatusPending, action: ApprovalActionHold, expected: ApprovalStatusOnHold},
		{name: "on hold accept", current: ApprovalStatusOnHold, action: ApprovalActionAccept, expected: ApprovalStatusApproved},
		{name: "on hold reject", current: ApprovalStatusOnHold, action: ApprovalActionReject, expected: ApprovalStatusRejected},
		{name: "on hold hold again", current: ApprovalStatusOnHold, action: ApprovalActionHold, expectError: ErrInvalidTransition},
		{name: "pending unknown action", current: ApprovalStatusPending, action: "escalate", expectError: ErrInvalidTransition},
		{name: "approved accept", current: ApprovalStatusApproved, action: ApprovalActionAccept, expectError: ErrAlreadyDecided},
		{name: "approved reject", current: ApprovalStatusApproved, action: ApprovalActionReject, expectError: ErrAlreadyDecided},
		{name: "approved hold", current: ApprovalStatusApproved, action: ApprovalActionHold, expectError: ErrAlreadyDecided},
		{name: "rejected accept", current: ApprovalStatusRejected, action: ApprovalActionAccept, expectError: ErrAlreadyDecided},
		{name: "rejected hold", current: ApprovalStatusRejected, action: ApprovalActionHold, expectError: ErrAlreadyDecided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateTransition(tt.current, tt.action)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("expected every rejection to be an invalid transition, got %v", err)
				}
				if got != tt.current {
					t.Errorf("expected status to stay %s, got %s", tt.current, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func validApproval() *ApprovalRequest {
	return &ApprovalRequest{
		ID:            "APP-00001",
		Category:      ApprovalCategoryLiability,
		RequesterID:   "emp-1",
		ApproverID:    "emp-2",
		MinExpense:    decimal.NewFromInt(100),
		MaxExpense:    decimal.NewFromInt(500),
		Priority:      PriorityHigh,
		TentativeDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		Reason:        "bank loan for new warehouse",
		Status:        ApprovalStatusPending,
	}
}

func TestApprovalRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *ApprovalRequest)
		field  string
	}{
		{name: "valid", mutate: func(a *ApprovalRequest) {}},
		{name: "min equals max", mutate: func(a *ApprovalRequest) { a.MinExpense = a.MaxExpense }},
		{name: "min above max", mutate: func(a *ApprovalRequest) { a.MinExpense = decimal.NewFromInt(501) }, field: "min_expense"},
		{name: "negative min", mutate: func(a *ApprovalRequest) { a.MinExpense = decimal.NewFromInt(-1) }, field: "min_expense"},
		{name: "empty reason", mutate: func(a *ApprovalRequest) { a.Reason = "   " }, field: "reason"},
		{name: "long reason", mutate: func(a *ApprovalRequest) { a.Reason = strings.Repeat("r", MaxReasonLength+1) }, field: "reason"},
		{name: "reason at limit", mutate: func(a *ApprovalRequest) { a.Reason = strings.Repeat("r", MaxReasonLength) }},
		{name: "unknown category", mutate: func(a *ApprovalRequest) { a.Category = "Travel" }, field: "category"},
		{name: "unknown priority", mutate: func(a *ApprovalRequest) { a.Priority = "Urgent" }, field: "priority"},
		{name: "self approval", mutate: func(a *ApprovalRequest) { a.ApproverID = a.RequesterID }, field: "approver_id"},
		{name: "missing date", mutate: func(a *ApprovalRequest) { a.TentativeDate = time.Time{} }, field: "tentative_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validApproval()
			tt.mutate(a)

			err := a.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := FieldOf(err); got != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, got)
			}
		})
	}
}

func TestApprovalRequest_Decide(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	t.Run("designated approver accepts", func(t *testing.T) {
		a := validApproval()
		err := a.Decide(Actor{EmployeeID: "emp-2", Role: RoleOperator}, ApprovalActionAccept, "ok", at)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Status != ApprovalStatusApproved {
			t.Errorf("expected Approved, got %s", a.Status)
		}
		if a.DecidedBy != "emp-2" || a.DecisionNote != "ok" || a.DecidedAt == nil || !a.DecidedAt.Equal(at) {
			t.Errorf("decision not recorded: %+v", a)
		}
	})

	t.Run("admin may decide for the approver", func(t *testing.T) {
		a := validApproval()
		if err := a.Decide(Actor{EmployeeID: "emp-9", Role: RoleAdmin}, ApprovalActionReject, "", at); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.DecidedBy != "emp-9" {
			t.Errorf("expected admin to be recorded, got %s", a.DecidedBy)
		}
	})

	t.Run("other employee is unauthorized", func(t *testing.T) {
		a := validApproval()
		err := a.Decide(Actor{EmployeeID: "emp-3", Role: RoleOperator}, ApprovalActionAccept, "", at)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if a.Status != ApprovalStatusPending {
			t.Errorf("status changed on unauthorized decision: %s", a.Status)
		}
	})

	t.Run("note over limit rejected", func(t *testing.T) {
		a := validApproval()
		err := a.Decide(Actor{EmployeeID: "emp-2", Role: RoleOperator}, ApprovalActionAccept, strings.Repeat("n", MaxDecisionNoteLength+1), at)
		if FieldOf(err) != "note" {
			t.Fatalf("expected note validation error, got %v", err)
		}
		if a.Status != ApprovalStatusPending {
			t.Errorf("status changed on invalid note: %s", a.Status)
		}
	})

	t.Run("hold then accept", func(t *testing.T) {
		a := validApproval()
		approver := Actor{EmployeeID: "emp-2", Role: RoleOperator}
		if err := a.Decide(approver, ApprovalActionHold, "waiting on quote", at); err != nil {
			t.Fatalf("hold failed: %v", err)
		}
		if err := a.Decide(approver, ApprovalActionAccept, "quote received", at.Add(time.Hour)); err != nil {
			t.Fatalf("accept failed: %v", err)
		}
		if !a.IsApproved() {
			t.Errorf("expected approved, got %s", a.Status)
		}
	})

	t.Run("second decision fails", func(t *testing.T) {
		a := validApproval()
		approver := Actor{EmployeeID: "emp-2", Role: RoleOperator}
		if err := a.Decide(approver, ApprovalActionReject, "", at); err != nil {
			t.Fatalf("reject failed: %v", err)
		}
		if err := a.Decide(approver, ApprovalActionAccept, "", at); !errors.Is(err, ErrAlreadyDecided) {
			t.Fatalf("expected ErrAlreadyDecided, got %v", err)
		}
		if a.Status != ApprovalStatusRejected {
			t.Errorf("expected Rejected to stick, got %s", a.Status)
		}
	})
}

func TestApprovalRequest_IsStaleHold(t *testing.T) {
	decided := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	a := validApproval()
	a.Status = ApprovalStatusOnHold
	a.DecidedAt = &decided

	now := decided.Add(72 * time.Hour)

	if a.IsStaleHold(0, now) {
		t.Error("zero ttl must disable hold expiry")
	}
	if !a.IsStaleHold(48*time.Hour, now) {
		t.Error("expected hold older than ttl to be stale")
	}
	if a.IsStaleHold(96*time.Hour, now) {
		t.Error("expected hold within ttl to be fresh")
	}
}
