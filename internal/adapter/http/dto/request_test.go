package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
)

func TestCreateApprovalRequest_ToUseCaseInput(t *testing.T) {
	req := &CreateApprovalRequest{
		Category:      "Liability",
		ApproverID:    "emp-2",
		MinExpense:    "100.00",
		MaxExpense:    "250000",
		Priority:      "High",
		TentativeDate: "2024-05-20",
		Reason:        "Working capital loan",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Category != domain.ApprovalCategoryLiability || got.Priority != domain.PriorityHigh {
		t.Fatalf("enums not carried over: %+v", got)
	}
	if !got.MaxExpense.Equal(decimal.NewFromInt(250000)) {
		t.Fatalf("expected max expense 250000, got %s", got.MaxExpense)
	}
	if !got.TentativeDate.Equal(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected tentative date %s", got.TentativeDate)
	}
}

func TestCreateApprovalRequest_RejectsThreeDecimals(t *testing.T) {
	req := &CreateApprovalRequest{MinExpense: "1.005", MaxExpense: "2", TentativeDate: "2024-05-20"}

	_, err := req.ToUseCaseInput()
	if domain.FieldOf(err) != "min_expense" {
		t.Fatalf("expected min_expense field error, got %v", err)
	}
}

func TestCreateEntryRequest_ToUseCaseInput(t *testing.T) {
	approvalID := "APP-00001"

	tests := []struct {
		name      string
		request   *CreateEntryRequest
		wantRef   domain.Reference
		wantField string
	}{
		{
			name: "salary reference with posting date",
			request: &CreateEntryRequest{
				Category:      "Purchase",
				Subtype:       "Salary Payout",
				Amount:        "52000.00",
				DebitAccount:  "5100",
				CreditAccount: "1000",
				PostingDate:   "2024-03-31",
				ReferenceType: "Salary",
				ReferenceID:   "SAL202403001",
				ApprovalID:    &approvalID,
			},
			wantRef: domain.SalaryRef{SalaryID: "SAL202403001"},
		},
		{
			name: "no reference",
			request: &CreateEntryRequest{
				Category:      "Internal",
				Amount:        "10",
				DebitAccount:  "1000",
				CreditAccount: "1100",
			},
		},
		{
			name: "reference id without type",
			request: &CreateEntryRequest{
				Category:      "Sale",
				Amount:        "10",
				DebitAccount:  "1000",
				CreditAccount: "4000",
				ReferenceID:   "X",
			},
			wantField: "reference_type",
		},
		{
			name: "malformed amount",
			request: &CreateEntryRequest{
				Category: "Sale",
				Amount:   "ten",
			},
			wantField: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.request.ToUseCaseInput()
			if tt.wantField != "" {
				if domain.FieldOf(err) != tt.wantField {
					t.Fatalf("expected field error on %s, got %v", tt.wantField, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Reference != tt.wantRef {
				t.Fatalf("reference = %#v, want %#v", got.Reference, tt.wantRef)
			}
			if tt.request.PostingDate != "" && (got.PostingDate == nil || got.PostingDate.Format(DateLayout) != tt.request.PostingDate) {
				t.Fatalf("posting date not parsed: %v", got.PostingDate)
			}
			if tt.request.PostingDate == "" && got.PostingDate != nil {
				t.Fatalf("expected nil posting date, got %v", got.PostingDate)
			}
		})
	}
}

func TestUpdateConversionRequest_ToUseCaseInput(t *testing.T) {
	rate := "80.00"
	req := &UpdateConversionRequest{ExchangeRateToINR: &rate}

	got, err := req.ToUseCaseInput("VP-00001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PaymentID != "VP-00001" || got.AmountInVendorCurrency != nil {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.ExchangeRateToINR == nil || !got.ExchangeRateToINR.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected rate 80, got %v", got.ExchangeRateToINR)
	}
}

func TestCreateSalaryRequest_DefaultsOptionalComponents(t *testing.T) {
	req := &CreateSalaryRequest{
		EmployeeID:              "emp-7",
		PayMonth:                "2024-03",
		SalaryComponentsRequest: SalaryComponentsRequest{Base: "50000"},
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Bonus.IsZero() || !got.Deduction.IsZero() {
		t.Fatalf("expected zero bonus and deduction, got %+v", got.SalaryComponentsInput)
	}
	if !got.PayMonth.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected pay month %s", got.PayMonth)
	}
}

func TestCreateLiabilityRequest_ParsesRate(t *testing.T) {
	rate := "12.5"
	req := &CreateLiabilityRequest{
		Name:         "Term loan",
		Lender:       "Bank",
		Principal:    "500000",
		InterestType: "Fixed",
		InterestRate: &rate,
		PaidAmount:   "120000",
		ApprovalID:   "APP-00003",
	}

	got, err := req.ToUseCaseInput()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.InterestRate == nil || got.InterestRate.String() != "12.5" {
		t.Fatalf("expected rate 12.5, got %v", got.InterestRate)
	}
	if !got.PaidAmount.Equal(decimal.NewFromInt(120000)) {
		t.Fatalf("expected paid 120000, got %s", got.PaidAmount)
	}
}

func TestValidator_ReportsJSONFieldNames(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name      string
		request   any
		wantField string
	}{
		{"missing category", &CreateApprovalRequest{ApproverID: "e", MinExpense: "1", MaxExpense: "2", Priority: "Low", TentativeDate: "2024-01-01", Reason: "r"}, "category"},
		{"bad priority", &CreateApprovalRequest{Category: "Asset", ApproverID: "e", MinExpense: "1", MaxExpense: "2", Priority: "Urgent", TentativeDate: "2024-01-01", Reason: "r"}, "priority"},
		{"note too long", &DecideApprovalRequest{Action: "accept", Note: string(make([]byte, 101))}, "note"},
		{"unknown action", &DecideApprovalRequest{Action: "approve"}, "action"},
		{"currency length", &CreateVendorPaymentRequest{VendorID: "v", Currency: "RUPEE", AmountInVendorCurrency: "1", ExchangeRateToINR: "1", DueDate: "2024-01-01"}, "currency"},
		{"empty conversion", &UpdateConversionRequest{}, "amount_in_vendor_currency"},
		{"bad pay month", &CreateSalaryRequest{EmployeeID: "e", PayMonth: "03/2024", SalaryComponentsRequest: SalaryComponentsRequest{Base: "1"}}, "pay_month"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.request)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := domain.FieldOf(err); got != tt.wantField {
				t.Fatalf("field = %q, want %q (%v)", got, tt.wantField, err)
			}
		})
	}
}

func TestValidator_AcceptsValidRequest(t *testing.T) {
	req := &DecideApprovalRequest{Action: "hold", Note: "waiting on quote"}

	if err := NewValidator().Struct(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
