package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type ApprovalRequest struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	RequesterID   string             `json:"requester_id"`
	ApproverID    string             `json:"approver_id"`
	MinExpense    pgtype.Numeric     `json:"min_expense"`
	MaxExpense    pgtype.Numeric     `json:"max_expense"`
	Priority      string             `json:"priority"`
	TentativeDate pgtype.Timestamptz `json:"tentative_date"`
	Reason        string             `json:"reason"`
	Status        string             `json:"status"`
	DecisionNote  string             `json:"decision_note"`
	DecidedBy     string             `json:"decided_by"`
	DecidedAt     pgtype.Timestamptz `json:"decided_at"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type AuditLog struct {
	ID           string             `json:"id"`
	ActorID      string             `json:"actor_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	RequestID    string             `json:"request_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Level      int32  `json:"level"`
	Active     bool   `json:"active"`
}

type ExternalReference struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type LedgerEntry struct {
	ID            string             `json:"id"`
	Category      string             `json:"category"`
	Subtype       string             `json:"subtype"`
	Amount        pgtype.Numeric     `json:"amount"`
	DebitAccount  string             `json:"debit_account"`
	CreditAccount string             `json:"credit_account"`
	Status        string             `json:"status"`
	Narration     string             `json:"narration"`
	PostingDate   pgtype.Timestamptz `json:"posting_date"`
	ReferenceType pgtype.Text        `json:"reference_type"`
	ReferenceID   pgtype.Text        `json:"reference_id"`
	ApprovalID    pgtype.Text        `json:"approval_id"`
	CreatedBy     string             `json:"created_by"`
	PostedAt      pgtype.Timestamptz `json:"posted_at"`
	CompletedAt   pgtype.Timestamptz `json:"completed_at"`
	CancelledAt   pgtype.Timestamptz `json:"cancelled_at"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type Liability struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Lender       string             `json:"lender"`
	Principal    pgtype.Numeric     `json:"principal"`
	InterestType string             `json:"interest_type"`
	InterestRate pgtype.Numeric     `json:"interest_rate"`
	TotalPayable pgtype.Numeric     `json:"total_payable"`
	OpeningPaid  pgtype.Numeric     `json:"opening_paid"`
	PaidAmount   pgtype.Numeric     `json:"paid_amount"`
	ApprovalID   string             `json:"approval_id"`
	Version      int64              `json:"version"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
	UpdatedAt    pgtype.Timestamptz `json:"updated_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Salary struct {
	ID            string             `json:"id"`
	EmployeeID    string             `json:"employee_id"`
	BaseSalary    pgtype.Numeric     `json:"base_salary"`
	Bonus         pgtype.Numeric     `json:"bonus"`
	Deduction     pgtype.Numeric     `json:"deduction"`
	PaymentStatus string             `json:"payment_status"`
	PayMonth      pgtype.Timestamptz `json:"pay_month"`
	TransactionID pgtype.Text        `json:"transaction_id"`
	Version       int64              `json:"version"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	UpdatedAt     pgtype.Timestamptz `json:"updated_at"`
}

type Sequence struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type VendorPayment struct {
	ID                     string             `json:"id"`
	VendorID               string             `json:"vendor_id"`
	Currency               string             `json:"currency"`
	AmountInVendorCurrency pgtype.Numeric     `json:"amount_in_vendor_currency"`
	ExchangeRateToInr      pgtype.Numeric     `json:"exchange_rate_to_inr"`
	PaidAmount             pgtype.Numeric     `json:"paid_amount"`
	DueDate                pgtype.Timestamptz `json:"due_date"`
	Version                int64              `json:"version"`
	CreatedAt              pgtype.Timestamptz `json:"created_at"`
	UpdatedAt              pgtype.Timestamptz `json:"updated_at"`
}
