package domain

import "time"

// Event types
const (
	EventTypeApprovalCreated     = "approval.created"
	EventTypeApprovalDecided     = "approval.decided"
	EventTypeEntryPosted         = "entry.posted"
	EventTypeEntryCompleted      = "entry.completed"
	EventTypeEntryCancelled      = "entry.cancelled"
	EventTypeVendorPaymentOpened = "vendor_payment.opened"
	EventTypeLiabilityOpened     = "liability.opened"
	EventTypeSalaryCreated       = "salary.created"
)

// Aggregate types
const (
	AggregateTypeApproval      = "approval"
	AggregateTypeEntry         = "entry"
	AggregateTypeVendorPayment = "vendor_payment"
	AggregateTypeLiability     = "liability"
	AggregateTypeSalary        = "salary"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}
