package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// Date layouts accepted in requests.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// CreateApprovalRequest represents a request to raise an approval.
type CreateApprovalRequest struct {
	Category      string `json:"category"       validate:"required,oneof=Asset Liability CustomerPayment VendorPayment Salary DepartmentBudget Service"`
	ApproverID    string `json:"approver_id"    validate:"required"`
	MinExpense    string `json:"min_expense"    validate:"required"`
	MaxExpense    string `json:"max_expense"    validate:"required"`
	Priority      string `json:"priority"       validate:"required,oneof=Low Medium High"`
	TentativeDate string `json:"tentative_date" validate:"required,datetime=2006-01-02"`
	Reason        string `json:"reason"         validate:"required,max=500"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateApprovalRequest) ToUseCaseInput() (usecase.CreateApprovalInput, error) {
	minExpense, err := domain.ParseMoney("min_expense", r.MinExpense)
	if err != nil {
		return usecase.CreateApprovalInput{}, err
	}
	maxExpense, err := domain.ParseMoney("max_expense", r.MaxExpense)
	if err != nil {
		return usecase.CreateApprovalInput{}, err
	}
	date, err := parseDate("tentative_date", DateLayout, r.TentativeDate)
	if err != nil {
		return usecase.CreateApprovalInput{}, err
	}

	return usecase.CreateApprovalInput{
		Category:      domain.ApprovalCategory(r.Category),
		ApproverID:    r.ApproverID,
		MinExpense:    minExpense,
		MaxExpense:    maxExpense,
		Priority:      domain.Priority(r.Priority),
		TentativeDate: date,
		Reason:        r.Reason,
	}, nil
}

// DecideApprovalRequest accepts, rejects or holds an approval.
type DecideApprovalRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject hold"`
	Note   string `json:"note"   validate:"max=100"`
}

// ToUseCaseInput converts to use case input.
func (r *DecideApprovalRequest) ToUseCaseInput(approvalID string) usecase.DecideInput {
	return usecase.DecideInput{
		ApprovalID: approvalID,
		Action:     domain.ApprovalAction(r.Action),
		Note:       r.Note,
	}
}

// CreateEntryRequest represents a request to record a ledger entry.
type CreateEntryRequest struct {
	Category      string  `json:"category"                 validate:"required,oneof=Purchase Sale Internal"`
	Subtype       string  `json:"subtype"                  validate:"max=100"`
	Amount        string  `json:"amount"                   validate:"required"`
	DebitAccount  string  `json:"debit_account"            validate:"required"`
	CreditAccount string  `json:"credit_account"           validate:"required"`
	Narration     string  `json:"narration"                validate:"max=500"`
	PostingDate   string  `json:"posting_date,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	ReferenceType string  `json:"reference_type,omitempty" validate:"omitempty,oneof=Salary Liability VendorPayment Asset Service CustomerPayment"`
	ReferenceID   string  `json:"reference_id,omitempty"`
	ApprovalID    *string `json:"approval_id,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateEntryRequest) ToUseCaseInput() (usecase.CreateEntryInput, error) {
	amount, err := domain.ParseMoney("amount", r.Amount)
	if err != nil {
		return usecase.CreateEntryInput{}, err
	}

	ref, err := domain.NewReference(domain.ReferenceKind(r.ReferenceType), r.ReferenceID)
	if err != nil {
		return usecase.CreateEntryInput{}, err
	}

	input := usecase.CreateEntryInput{
		Category:      domain.EntryCategory(r.Category),
		Subtype:       r.Subtype,
		Amount:        amount,
		DebitAccount:  r.DebitAccount,
		CreditAccount: r.CreditAccount,
		Narration:     r.Narration,
		Reference:     ref,
		ApprovalID:    r.ApprovalID,
	}

	if r.PostingDate != "" {
		date, err := parseDate("posting_date", DateLayout, r.PostingDate)
		if err != nil {
			return usecase.CreateEntryInput{}, err
		}
		input.PostingDate = &date
	}

	return input, nil
}

// UpdateDraftRequest replaces the editable fields of a Draft entry.
type UpdateDraftRequest struct {
	Amount        string `json:"amount"         validate:"required"`
	DebitAccount  string `json:"debit_account"  validate:"required"`
	CreditAccount string `json:"credit_account" validate:"required"`
	Narration     string `json:"narration"      validate:"max=500"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateDraftRequest) ToUseCaseInput(entryID string) (usecase.UpdateDraftInput, error) {
	amount, err := domain.ParseMoney("amount", r.Amount)
	if err != nil {
		return usecase.UpdateDraftInput{}, err
	}

	return usecase.UpdateDraftInput{
		EntryID:       entryID,
		Amount:        amount,
		DebitAccount:  r.DebitAccount,
		CreditAccount: r.CreditAccount,
		Narration:     r.Narration,
	}, nil
}

// CreateVendorPaymentRequest represents a request to open a vendor payment.
type CreateVendorPaymentRequest struct {
	VendorID               string `json:"vendor_id"                 validate:"required"`
	Currency               string `json:"currency"                  validate:"required,len=3"`
	AmountInVendorCurrency string `json:"amount_in_vendor_currency" validate:"required"`
	ExchangeRateToINR      string `json:"exchange_rate_to_inr"      validate:"required"`
	DueDate                string `json:"due_date"                  validate:"required,datetime=2006-01-02"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateVendorPaymentRequest) ToUseCaseInput() (usecase.CreateVendorPaymentInput, error) {
	amount, err := domain.ParseMoney("amount_in_vendor_currency", r.AmountInVendorCurrency)
	if err != nil {
		return usecase.CreateVendorPaymentInput{}, err
	}
	rate, err := parseRate(r.ExchangeRateToINR)
	if err != nil {
		return usecase.CreateVendorPaymentInput{}, err
	}
	due, err := parseDate("due_date", DateLayout, r.DueDate)
	if err != nil {
		return usecase.CreateVendorPaymentInput{}, err
	}

	return usecase.CreateVendorPaymentInput{
		VendorID:               r.VendorID,
		Currency:               r.Currency,
		AmountInVendorCurrency: amount,
		ExchangeRateToINR:      rate,
		DueDate:                due,
	}, nil
}

// UpdateConversionRequest changes the vendor amount, the rate, or both.
type UpdateConversionRequest struct {
	AmountInVendorCurrency *string `json:"amount_in_vendor_currency,omitempty" validate:"required_without=ExchangeRateToINR"`
	ExchangeRateToINR      *string `json:"exchange_rate_to_inr,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateConversionRequest) ToUseCaseInput(paymentID string) (usecase.UpdateConversionInput, error) {
	input := usecase.UpdateConversionInput{PaymentID: paymentID}

	if r.AmountInVendorCurrency != nil {
		amount, err := domain.ParseMoney("amount_in_vendor_currency", *r.AmountInVendorCurrency)
		if err != nil {
			return input, err
		}
		input.AmountInVendorCurrency = &amount
	}
	if r.ExchangeRateToINR != nil {
		rate, err := parseRate(*r.ExchangeRateToINR)
		if err != nil {
			return input, err
		}
		input.ExchangeRateToINR = &rate
	}

	return input, nil
}

// CreateLiabilityRequest represents a request to open a liability.
type CreateLiabilityRequest struct {
	Name         string  `json:"name"                    validate:"required,max=200"`
	Lender       string  `json:"lender"                  validate:"required,max=200"`
	Principal    string  `json:"principal"               validate:"required"`
	InterestType string  `json:"interest_type"           validate:"required,oneof=Fixed Variable None"`
	InterestRate *string `json:"interest_rate,omitempty"`
	PaidAmount   string  `json:"paid_amount,omitempty"`
	ApprovalID   string  `json:"approval_id"             validate:"required"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateLiabilityRequest) ToUseCaseInput() (usecase.CreateLiabilityInput, error) {
	principal, err := domain.ParseMoney("principal", r.Principal)
	if err != nil {
		return usecase.CreateLiabilityInput{}, err
	}
	paid, err := optionalMoney("paid_amount", r.PaidAmount)
	if err != nil {
		return usecase.CreateLiabilityInput{}, err
	}

	input := usecase.CreateLiabilityInput{
		Name:         r.Name,
		Lender:       r.Lender,
		Principal:    principal,
		InterestType: domain.InterestType(r.InterestType),
		PaidAmount:   paid,
		ApprovalID:   r.ApprovalID,
	}

	if r.InterestRate != nil {
		rate, err := decimal.NewFromString(*r.InterestRate)
		if err != nil {
			return usecase.CreateLiabilityInput{}, domain.NewFieldError("interest_rate", "must be a decimal number")
		}
		input.InterestRate = &rate
	}

	return input, nil
}

// SalaryComponentsRequest carries salary components. Bonus and deduction
// default to zero.
type SalaryComponentsRequest struct {
	Base      string `json:"base"                validate:"required"`
	Bonus     string `json:"bonus,omitempty"`
	Deduction string `json:"deduction,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SalaryComponentsRequest) ToUseCaseInput() (usecase.SalaryComponentsInput, error) {
	base, err := domain.ParseMoney("base", r.Base)
	if err != nil {
		return usecase.SalaryComponentsInput{}, err
	}
	bonus, err := optionalMoney("bonus", r.Bonus)
	if err != nil {
		return usecase.SalaryComponentsInput{}, err
	}
	deduction, err := optionalMoney("deduction", r.Deduction)
	if err != nil {
		return usecase.SalaryComponentsInput{}, err
	}

	return usecase.SalaryComponentsInput{Base: base, Bonus: bonus, Deduction: deduction}, nil
}

// CreateSalaryRequest represents a request to record a monthly salary.
type CreateSalaryRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	PayMonth   string `json:"pay_month"   validate:"required,datetime=2006-01"`
	SalaryComponentsRequest
}

// ToUseCaseInput converts to use case input.
func (r *CreateSalaryRequest) ToUseCaseInput() (usecase.CreateSalaryInput, error) {
	month, err := parseDate("pay_month", MonthLayout, r.PayMonth)
	if err != nil {
		return usecase.CreateSalaryInput{}, err
	}
	components, err := r.SalaryComponentsRequest.ToUseCaseInput()
	if err != nil {
		return usecase.CreateSalaryInput{}, err
	}

	return usecase.CreateSalaryInput{
		EmployeeID:            r.EmployeeID,
		PayMonth:              month,
		SalaryComponentsInput: components,
	}, nil
}

func parseDate(field, layout, s string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewFieldError(field, "must match layout "+layout)
	}
	return t, nil
}

func optionalMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return domain.ParseMoney(field, s)
}

// parseRate only parses; the domain checks sign, precision and range.
func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewFieldError("exchange_rate_to_inr", "must be a decimal number")
	}
	return rate, nil
}
