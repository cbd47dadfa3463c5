package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSalaryComponents(t *testing.T) {
	tests := []struct {
		name        string
		base        string
		bonus       string
		deduction   string
		expectedNet string
		expectError error
	}{
		{name: "base plus bonus minus deduction", base: "50000", bonus: "5000", deduction: "2000", expectedNet: "53000"},
		{name: "no bonus", base: "42000.50", bonus: "0", deduction: "0.50", expectedNet: "42000"},
		{name: "deduction consumes everything", base: "1000", bonus: "0", deduction: "1000", expectedNet: "0"},
		{name: "negative net", base: "1000", bonus: "100", deduction: "1100.01", expectError: ErrInvalidSalaryComposition},
		{name: "zero base", base: "0", bonus: "100", deduction: "0", expectError: ErrValidation},
		{name: "negative bonus", base: "100", bonus: "-1", deduction: "0", expectError: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := SalaryComponents{Base: dec(tt.base), Bonus: dec(tt.bonus), Deduction: dec(tt.deduction)}

			err := c.Validate()
			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.Net().Equal(dec(tt.expectedNet)) {
				t.Errorf("expected net %s, got %s", tt.expectedNet, c.Net())
			}
		})
	}
}

func newTestSalary(t *testing.T) *SalaryRecord {
	t.Helper()
	s, err := NewSalaryRecord("SAL202610001", "emp-1", SalaryComponents{
		Base:      dec("50000"),
		Bonus:     dec("5000"),
		Deduction: dec("2000"),
	}, time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC), now)
	if err != nil {
		t.Fatalf("NewSalaryRecord: %v", err)
	}
	return s
}

func TestNewSalaryRecord(t *testing.T) {
	s := newTestSalary(t)

	if s.PaymentStatus != SalaryStatusPending {
		t.Errorf("expected Pending, got %s", s.PaymentStatus)
	}
	if want := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC); !s.PayMonth.Equal(want) {
		t.Errorf("expected pay month %v, got %v", want, s.PayMonth)
	}
	if !s.NetSalary().Equal(dec("53000")) {
		t.Errorf("expected net 53000, got %s", s.NetSalary())
	}

	_, err := NewSalaryRecord("SAL202610002", "emp-1", SalaryComponents{
		Base: dec("100"), Deduction: dec("200"),
	}, now, now)
	if !errors.Is(err, ErrInvalidSalaryComposition) {
		t.Errorf("expected ErrInvalidSalaryComposition, got %v", err)
	}
}

func TestSalaryRecord_UpdateComponentsRecomputesNet(t *testing.T) {
	s := newTestSalary(t)

	err := s.UpdateComponents(SalaryComponents{Base: dec("60000"), Bonus: decimal.Zero, Deduction: dec("1000")}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.NetSalary().Equal(dec("59000")) {
		t.Errorf("expected net 59000, got %s", s.NetSalary())
	}

	err = s.UpdateComponents(SalaryComponents{Base: dec("10"), Deduction: dec("20")}, now)
	if !errors.Is(err, ErrInvalidSalaryComposition) {
		t.Fatalf("expected ErrInvalidSalaryComposition, got %v", err)
	}
	if !s.NetSalary().Equal(dec("59000")) {
		t.Errorf("failed update changed net to %s", s.NetSalary())
	}
}

func TestSalaryRecord_Payment(t *testing.T) {
	s := newTestSalary(t)

	if err := s.ApplyPayment("TXN-1", dec("50000"), now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected amount mismatch to fail validation, got %v", err)
	}

	if err := s.MarkInProcess(now); err != nil {
		t.Fatalf("MarkInProcess: %v", err)
	}
	if err := s.ApplyPayment("TXN-1", dec("53000"), now); err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if s.PaymentStatus != SalaryStatusPaid || s.TransactionID == nil || *s.TransactionID != "TXN-1" {
		t.Fatalf("expected Paid by TXN-1, got %s %v", s.PaymentStatus, s.TransactionID)
	}

	if err := s.ApplyPayment("TXN-2", dec("53000"), now); !errors.Is(err, ErrOverPayment) {
		t.Errorf("expected second payout to overpay, got %v", err)
	}
	if err := s.UpdateComponents(SalaryComponents{Base: dec("1")}, now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected paid record to be frozen, got %v", err)
	}
	if err := s.ReversePayment("TXN-2", dec("53000"), now); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected reversal by another entry to fail, got %v", err)
	}

	if err := s.ReversePayment("TXN-1", dec("53000"), now); err != nil {
		t.Fatalf("ReversePayment: %v", err)
	}
	if s.PaymentStatus != SalaryStatusPending || s.TransactionID != nil {
		t.Errorf("expected reversal to restore Pending, got %s %v", s.PaymentStatus, s.TransactionID)
	}
}
