package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the paid/total split of an account.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "Pending"
	PaymentStatusPartiallyPaid PaymentStatus = "PartiallyPaid"
	PaymentStatusPaid          PaymentStatus = "Paid"
	PaymentStatusOverdue       PaymentStatus = "Overdue"
)

// VendorPaymentAccount tracks an amount owed to a vendor, in the vendor's
// currency and converted to INR. AmountINR, Outstanding and Status are
// computed from the stored inputs on every read.
type VendorPaymentAccount struct {
	ID                     string
	VendorID               string
	Currency               string
	AmountInVendorCurrency decimal.Decimal
	ExchangeRateToINR      decimal.Decimal
	PaidAmount             decimal.Decimal
	DueDate                time.Time
	Version                int64
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// NewVendorPaymentAccount validates and builds an unpaid account.
func NewVendorPaymentAccount(id, vendorID, currency string, amount, rate decimal.Decimal, due, now time.Time) (*VendorPaymentAccount, error) {
	if vendorID == "" {
		return nil, NewFieldError("vendor_id", "required")
	}
	if err := ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if err := ValidateMoney("amount_in_vendor_currency", amount); err != nil {
		return nil, err
	}
	if err := validateRate(rate); err != nil {
		return nil, err
	}
	if due.IsZero() {
		return nil, NewFieldError("due_date", "required")
	}

	return &VendorPaymentAccount{
		ID:                     id,
		VendorID:               vendorID,
		Currency:               NormalizeCurrency(currency),
		AmountInVendorCurrency: amount,
		ExchangeRateToINR:      rate,
		PaidAmount:             decimal.Zero,
		DueDate:                due,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

func validateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidRate, rate)
	}
	return validateScaledRate("exchange_rate_to_inr", rate, ExchangeRateScale, exchangeRateLimit)
}

// ConvertToINR is round2(amount × rate).
func ConvertToINR(amount, rate decimal.Decimal) decimal.Decimal {
	return Round2(amount.Mul(rate))
}

// AmountINR is the converted total owed.
func (v *VendorPaymentAccount) AmountINR() decimal.Decimal {
	return ConvertToINR(v.AmountInVendorCurrency, v.ExchangeRateToINR)
}

// Outstanding is AmountINR minus PaidAmount.
func (v *VendorPaymentAccount) Outstanding() decimal.Decimal {
	return outstanding(v.AmountINR(), v.PaidAmount)
}

// Status derives the payment state as of now.
func (v *VendorPaymentAccount) Status(now time.Time) PaymentStatus {
	switch {
	case v.Outstanding().IsZero():
		return PaymentStatusPaid
	case now.After(v.DueDate):
		return PaymentStatusOverdue
	case v.PaidAmount.IsPositive():
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusPending
	}
}

// IsSettled reports whether nothing is left outstanding.
func (v *VendorPaymentAccount) IsSettled() bool {
	return v.Outstanding().IsZero()
}

// ApplyPayment adds a posted payment of delta INR.
func (v *VendorPaymentAccount) ApplyPayment(delta decimal.Decimal, at time.Time) error {
	if err := validateDelta(delta); err != nil {
		return err
	}
	return v.adjust(delta, at)
}

// ReversePayment undoes a previously applied payment of delta INR.
func (v *VendorPaymentAccount) ReversePayment(delta decimal.Decimal, at time.Time) error {
	if err := validateDelta(delta); err != nil {
		return err
	}
	return v.adjust(delta.Neg(), at)
}

func (v *VendorPaymentAccount) adjust(delta decimal.Decimal, at time.Time) error {
	paid, err := adjustPaid(v.PaidAmount, v.AmountINR(), delta)
	if err != nil {
		return err
	}
	v.PaidAmount = paid
	v.UpdatedAt = at
	return nil
}

// SetConversion changes the vendor-currency amount and/or the exchange rate.
// Paid is untouched; a change that would leave paid above the new INR total
// is rejected.
func (v *VendorPaymentAccount) SetConversion(amount, rate decimal.Decimal, at time.Time) error {
	if err := ValidateMoney("amount_in_vendor_currency", amount); err != nil {
		return err
	}
	if err := validateRate(rate); err != nil {
		return err
	}

	total := ConvertToINR(amount, rate)
	if v.PaidAmount.GreaterThan(total) {
		return fmt.Errorf("%w: paid %s exceeds recomputed total %s", ErrOverPayment, v.PaidAmount, total)
	}

	v.AmountInVendorCurrency = amount
	v.ExchangeRateToINR = rate
	v.UpdatedAt = at
	return nil
}
