package domain

import (
	"encoding/json"
	"time"
)

// AuditLog represents an audit trail entry for a state change
type AuditLog struct {
	ID           string
	ActorID      string // Who performed the action
	Action       string // What action (approval.decide, entry.post, etc.)
	ResourceType string // Type of resource (approval, entry, vendor_payment, ...)
	ResourceID   string
	RequestID    string
	BeforeState  JSON
	AfterState   JSON
	Status       string
	ErrorMessage string
	CreatedAt    time.Time
}

// JSON is a type alias for JSON data
type JSON map[string]any

// AuditAction represents different types of auditable actions
type AuditAction string

const (
	AuditActionApprovalCreate AuditAction = "approval.create"
	AuditActionApprovalDecide AuditAction = "approval.decide"

	AuditActionEntryCreate   AuditAction = "entry.create"
	AuditActionEntryUpdate   AuditAction = "entry.update"
	AuditActionEntryPost     AuditAction = "entry.post"
	AuditActionEntryComplete AuditAction = "entry.complete"
	AuditActionEntryCancel   AuditAction = "entry.cancel"

	AuditActionVendorPaymentCreate AuditAction = "vendor_payment.create"
	AuditActionVendorPaymentRate   AuditAction = "vendor_payment.conversion"
	AuditActionLiabilityCreate     AuditAction = "liability.create"
	AuditActionSalaryCreate        AuditAction = "salary.create"
	AuditActionSalaryUpdate        AuditAction = "salary.update"
)

// AuditStatus represents the status of an audited action
type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailure AuditStatus = "failure"
)

// MarshalState converts a domain object to JSON for audit logging
func MarshalState(v any) JSON {
	if v == nil {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return JSON{"error": "failed to marshal state"}
	}

	var result JSON
	if err := json.Unmarshal(data, &result); err != nil {
		return JSON{"error": "failed to unmarshal state"}
	}

	return result
}

// AuditFilter defines filters for querying audit logs
type AuditFilter struct {
	ActorID      string
	Action       string
	ResourceType string
	ResourceID   string
	StartDate    *time.Time
	EndDate      *time.Time
	Limit        int
	Offset       int
}
