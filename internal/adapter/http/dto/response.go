package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/usecase"
)

// ErrorResponse represents an error in API responses. Error is the error
// kind; Field names the offending input for validation errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ListResponse wraps a page of items.
type ListResponse[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}

func mapAll[S any, T any](items []S, fn func(S) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

// ApprovalResponse represents an approval request in API responses.
type ApprovalResponse struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	RequesterID   string     `json:"requester_id"`
	ApproverID    string     `json:"approver_id"`
	MinExpense    string     `json:"min_expense"`
	MaxExpense    string     `json:"max_expense"`
	Priority      string     `json:"priority"`
	TentativeDate string     `json:"tentative_date"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
	DecisionNote  string     `json:"decision_note,omitempty"`
	DecidedBy     string     `json:"decided_by,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ApprovalFromDomain converts a domain approval to a response.
func ApprovalFromDomain(a *domain.ApprovalRequest) *ApprovalResponse {
	return &ApprovalResponse{
		ID:            a.ID,
		Category:      string(a.Category),
		RequesterID:   a.RequesterID,
		ApproverID:    a.ApproverID,
		MinExpense:    money(a.MinExpense),
		MaxExpense:    money(a.MaxExpense),
		Priority:      string(a.Priority),
		TentativeDate: a.TentativeDate.Format(DateLayout),
		Reason:        a.Reason,
		Status:        string(a.Status),
		DecisionNote:  a.DecisionNote,
		DecidedBy:     a.DecidedBy,
		DecidedAt:     a.DecidedAt,
		Version:       a.Version,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// ApprovalsFromDomain converts domain approvals to responses.
func ApprovalsFromDomain(approvals []*domain.ApprovalRequest) []*ApprovalResponse {
	return mapAll(approvals, ApprovalFromDomain)
}

// ApproverResponse is a selectable approver.
type ApproverResponse struct {
	EmployeeID string `json:"employee_id"`
	Label      string `json:"label"`
}

// ApproversFromUseCase converts approvers to responses.
func ApproversFromUseCase(approvers []usecase.Approver) []ApproverResponse {
	return mapAll(approvers, func(a usecase.Approver) ApproverResponse {
		return ApproverResponse{EmployeeID: a.EmployeeID, Label: a.Label}
	})
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID            string     `json:"id"`
	Category      string     `json:"category"`
	Subtype       string     `json:"subtype,omitempty"`
	Amount        string     `json:"amount"`
	DebitAccount  string     `json:"debit_account"`
	CreditAccount string     `json:"credit_account"`
	Status        string     `json:"status"`
	Narration     string     `json:"narration,omitempty"`
	PostingDate   string     `json:"posting_date"`
	ReferenceType string     `json:"reference_type,omitempty"`
	ReferenceID   string     `json:"reference_id,omitempty"`
	ApprovalID    *string    `json:"approval_id,omitempty"`
	CreatedBy     string     `json:"created_by"`
	PostedAt      *time.Time `json:"posted_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	Version       int64      `json:"version"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	resp := &EntryResponse{
		ID:            e.ID,
		Category:      string(e.Category),
		Subtype:       e.Subtype,
		Amount:        money(e.Amount),
		DebitAccount:  e.DebitAccount,
		CreditAccount: e.CreditAccount,
		Status:        string(e.Status),
		Narration:     e.Narration,
		PostingDate:   e.PostingDate.Format(DateLayout),
		ApprovalID:    e.ApprovalID,
		CreatedBy:     e.CreatedBy,
		PostedAt:      e.PostedAt,
		CompletedAt:   e.CompletedAt,
		CancelledAt:   e.CancelledAt,
		Version:       e.Version,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if e.Reference != nil {
		resp.ReferenceType = string(e.Reference.Kind())
		resp.ReferenceID = e.Reference.TargetID()
	}
	return resp
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	return mapAll(entries, EntryFromDomain)
}

// VendorPaymentResponse represents a vendor payment in API responses. Status
// is derived at response time.
type VendorPaymentResponse struct {
	ID                     string    `json:"id"`
	VendorID               string    `json:"vendor_id"`
	Currency               string    `json:"currency"`
	AmountInVendorCurrency string    `json:"amount_in_vendor_currency"`
	ExchangeRateToINR      string    `json:"exchange_rate_to_inr"`
	AmountINR              string    `json:"amount_inr"`
	PaidAmount             string    `json:"paid_amount"`
	Outstanding            string    `json:"outstanding"`
	DueDate                string    `json:"due_date"`
	Status                 string    `json:"status"`
	Version                int64     `json:"version"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// VendorPaymentFromDomain converts a vendor payment to a response.
func VendorPaymentFromDomain(v *domain.VendorPaymentAccount, now time.Time) *VendorPaymentResponse {
	return &VendorPaymentResponse{
		ID:                     v.ID,
		VendorID:               v.VendorID,
		Currency:               v.Currency,
		AmountInVendorCurrency: money(v.AmountInVendorCurrency),
		ExchangeRateToINR:      v.ExchangeRateToINR.String(),
		AmountINR:              money(v.AmountINR()),
		PaidAmount:             money(v.PaidAmount),
		Outstanding:            money(v.Outstanding()),
		DueDate:                v.DueDate.Format(DateLayout),
		Status:                 string(v.Status(now)),
		Version:                v.Version,
		CreatedAt:              v.CreatedAt,
		UpdatedAt:              v.UpdatedAt,
	}
}

// VendorPaymentsFromDomain converts vendor payments to responses.
func VendorPaymentsFromDomain(payments []*domain.VendorPaymentAccount, now time.Time) []*VendorPaymentResponse {
	return mapAll(payments, func(v *domain.VendorPaymentAccount) *VendorPaymentResponse {
		return VendorPaymentFromDomain(v, now)
	})
}

// LiabilityResponse represents a liability in API responses.
type LiabilityResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Lender       string    `json:"lender"`
	Principal    string    `json:"principal"`
	InterestType string    `json:"interest_type"`
	InterestRate string    `json:"interest_rate"`
	TotalPayable string    `json:"total_payable"`
	OpeningPaid  string    `json:"opening_paid"`
	PaidAmount   string    `json:"paid_amount"`
	Remaining    string    `json:"remaining"`
	ApprovalID   string    `json:"approval_id"`
	Version      int64     `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LiabilityFromDomain converts a liability to a response.
func LiabilityFromDomain(l *domain.LiabilityAccount) *LiabilityResponse {
	return &LiabilityResponse{
		ID:           l.ID,
		Name:         l.Name,
		Lender:       l.Lender,
		Principal:    money(l.Principal),
		InterestType: string(l.InterestType),
		InterestRate: l.InterestRate.String(),
		TotalPayable: money(l.TotalPayable),
		OpeningPaid:  money(l.OpeningPaid),
		PaidAmount:   money(l.PaidAmount),
		Remaining:    money(l.Remaining()),
		ApprovalID:   l.ApprovalID,
		Version:      l.Version,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// LiabilitiesFromDomain converts liabilities to responses.
func LiabilitiesFromDomain(liabilities []*domain.LiabilityAccount) []*LiabilityResponse {
	return mapAll(liabilities, LiabilityFromDomain)
}

// SalaryResponse represents a salary record in API responses.
type SalaryResponse struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employee_id"`
	Base          string    `json:"base"`
	Bonus         string    `json:"bonus"`
	Deduction     string    `json:"deduction"`
	NetSalary     string    `json:"net_salary"`
	PaymentStatus string    `json:"payment_status"`
	PayMonth      string    `json:"pay_month"`
	TransactionID *string   `json:"transaction_id,omitempty"`
	Version       int64     `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SalaryFromDomain converts a salary record to a response.
func SalaryFromDomain(s *domain.SalaryRecord) *SalaryResponse {
	return &SalaryResponse{
		ID:            s.ID,
		EmployeeID:    s.EmployeeID,
		Base:          money(s.Components.Base),
		Bonus:         money(s.Components.Bonus),
		Deduction:     money(s.Components.Deduction),
		NetSalary:     money(s.NetSalary()),
		PaymentStatus: string(s.PaymentStatus),
		PayMonth:      s.PayMonth.Format(MonthLayout),
		TransactionID: s.TransactionID,
		Version:       s.Version,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// SalariesFromDomain converts salary records to responses.
func SalariesFromDomain(salaries []*domain.SalaryRecord) []*SalaryResponse {
	return mapAll(salaries, SalaryFromDomain)
}

// ReconciliationResultResponse is the outcome for one account.
type ReconciliationResultResponse struct {
	Kind           string    `json:"kind"`
	AccountID      string    `json:"account_id"`
	RecordedPaid   string    `json:"recorded_paid"`
	CalculatedPaid string    `json:"calculated_paid"`
	Difference     string    `json:"difference"`
	IsReconciled   bool      `json:"is_reconciled"`
	LastChecked    time.Time `json:"last_checked"`
}

// ReconciliationResultFromUseCase converts a reconciliation result.
func ReconciliationResultFromUseCase(r *usecase.ReconciliationResult) *ReconciliationResultResponse {
	return &ReconciliationResultResponse{
		Kind:           string(r.Kind),
		AccountID:      r.AccountID,
		RecordedPaid:   money(r.RecordedPaid),
		CalculatedPaid: money(r.CalculatedPaid),
		Difference:     money(r.Difference),
		IsReconciled:   r.IsReconciled,
		LastChecked:    r.LastChecked,
	}
}

// ReconciliationReportResponse summarises a full reconciliation run.
type ReconciliationReportResponse struct {
	TotalAccounts      int                             `json:"total_accounts"`
	ReconciledAccounts int                             `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResultResponse `json:"discrepancies"`
	CheckedAt          time.Time                       `json:"checked_at"`
}

// ReconciliationReportFromUseCase converts a reconciliation report.
func ReconciliationReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      mapAll(r.Discrepancies, ReconciliationResultFromUseCase),
		CheckedAt:          r.CheckedAt,
	}
}
