package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultLargeEntryThreshold is the purchase/sale amount above which an
	// entry needs an approval (in decimal string)
	DefaultLargeEntryThreshold = "100000"

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Sequence names
const (
	SequenceApproval      = "approval"
	SequenceVendorPayment = "vendor_payment"
	SequenceLiability     = "liability"
	sequenceSalaryPrefix  = "salary:"
)

// SalarySequence is the per-month sequence salary ids are numbered from.
func SalarySequence(payMonth time.Time) string {
	return sequenceSalaryPrefix + payMonth.UTC().Format("200601")
}
