package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SalaryPaymentStatus is the payout state of a salary record.
type SalaryPaymentStatus string

const (
	SalaryStatusPending   SalaryPaymentStatus = "Pending"
	SalaryStatusInProcess SalaryPaymentStatus = "In-Process"
	SalaryStatusPaid      SalaryPaymentStatus = "Paid"
)

// SalaryComponents are the only stored inputs to net pay.
type SalaryComponents struct {
	Base      decimal.Decimal
	Bonus     decimal.Decimal
	Deduction decimal.Decimal
}

// Validate checks each component and that they compose to a non-negative net.
func (c SalaryComponents) Validate() error {
	if err := ValidatePositiveMoney("base_salary", c.Base); err != nil {
		return err
	}
	if err := ValidateMoney("bonus", c.Bonus); err != nil {
		return err
	}
	if err := ValidateMoney("deduction", c.Deduction); err != nil {
		return err
	}
	if c.Net().IsNegative() {
		return fmt.Errorf("%w: base %s + bonus %s - deduction %s is negative",
			ErrInvalidSalaryComposition, c.Base, c.Bonus, c.Deduction)
	}
	return nil
}

// Net is round2(base + bonus - deduction).
func (c SalaryComponents) Net() decimal.Decimal {
	return Round2(c.Base.Add(c.Bonus).Sub(c.Deduction))
}

// SalaryRecord is one month's pay for one employee.
type SalaryRecord struct {
	ID            string
	EmployeeID    string
	Components    SalaryComponents
	PaymentStatus SalaryPaymentStatus
	PayMonth      time.Time
	TransactionID *string
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PayMonthOf truncates t to the first day of its month, UTC.
func PayMonthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NewSalaryRecord validates the components and builds a pending record.
func NewSalaryRecord(id, employeeID string, c SalaryComponents, payMonth, now time.Time) (*SalaryRecord, error) {
	if employeeID == "" {
		return nil, NewFieldError("employee_id", "required")
	}
	if payMonth.IsZero() {
		return nil, NewFieldError("pay_month", "required")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &SalaryRecord{
		ID:            id,
		EmployeeID:    employeeID,
		Components:    c,
		PaymentStatus: SalaryStatusPending,
		PayMonth:      PayMonthOf(payMonth),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// NetSalary is always computed from the components.
func (s *SalaryRecord) NetSalary() decimal.Decimal {
	return s.Components.Net()
}

// UpdateComponents replaces base, bonus and deduction. Paid records are frozen.
func (s *SalaryRecord) UpdateComponents(c SalaryComponents, at time.Time) error {
	if s.PaymentStatus == SalaryStatusPaid {
		return fmt.Errorf("%w: salary %s is already paid", ErrInvalidTransition, s.ID)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	s.Components = c
	s.UpdatedAt = at
	return nil
}

// MarkInProcess flags a pending record as queued for payout.
func (s *SalaryRecord) MarkInProcess(at time.Time) error {
	if s.PaymentStatus != SalaryStatusPending {
		return fmt.Errorf("%w: salary %s is %s", ErrInvalidTransition, s.ID, s.PaymentStatus)
	}
	s.PaymentStatus = SalaryStatusInProcess
	s.UpdatedAt = at
	return nil
}

// ApplyPayment settles the record with the posted entry entryID. The amount
// must equal the net salary.
func (s *SalaryRecord) ApplyPayment(entryID string, amount decimal.Decimal, at time.Time) error {
	return s.settle(entryID, amount, true, at)
}

// ReversePayment undoes ApplyPayment for the same entry and amount.
func (s *SalaryRecord) ReversePayment(entryID string, amount decimal.Decimal, at time.Time) error {
	return s.settle(entryID, amount, false, at)
}

func (s *SalaryRecord) settle(entryID string, amount decimal.Decimal, pay bool, at time.Time) error {
	if !amount.Equal(s.NetSalary()) {
		return NewFieldError("amount", fmt.Sprintf("must equal net salary %s", s.NetSalary()))
	}

	if pay {
		if s.PaymentStatus == SalaryStatusPaid {
			return fmt.Errorf("%w: salary %s is already paid", ErrOverPayment, s.ID)
		}
		id := entryID
		s.PaymentStatus = SalaryStatusPaid
		s.TransactionID = &id
	} else {
		if s.PaymentStatus != SalaryStatusPaid || s.TransactionID == nil || *s.TransactionID != entryID {
			return fmt.Errorf("%w: salary %s was not paid by entry %s", ErrInvalidTransition, s.ID, entryID)
		}
		s.PaymentStatus = SalaryStatusPending
		s.TransactionID = nil
	}

	s.UpdatedAt = at
	return nil
}

// SalaryFilter narrows salary listings. Empty fields match everything.
type SalaryFilter struct {
	EmployeeID string
	PayMonth   *time.Time
	Status     SalaryPaymentStatus
	Limit      int
	Offset     int
}

// Matches reports whether s satisfies the filter.
func (f SalaryFilter) Matches(s *SalaryRecord) bool {
	return (f.EmployeeID == "" || s.EmployeeID == f.EmployeeID) &&
		(f.PayMonth == nil || s.PayMonth.Equal(PayMonthOf(*f.PayMonth))) &&
		(f.Status == "" || s.PaymentStatus == f.Status)
}
