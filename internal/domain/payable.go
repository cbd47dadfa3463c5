package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// adjustPaid is the single update function for paid amounts. Payments pass a
// positive delta; reversals pass the exact negated delta of the payment they
// undo, so forward and reverse arithmetic cannot drift apart.
func adjustPaid(paid, total, delta decimal.Decimal) (decimal.Decimal, error) {
	next := paid.Add(delta)

	if next.GreaterThan(total) {
		return paid, fmt.Errorf("%w: paid %s + %s exceeds total %s", ErrOverPayment, paid, delta, total)
	}
	if next.IsNegative() {
		return paid, NewFieldError("amount", fmt.Sprintf("reversal of %s exceeds paid amount %s", delta.Neg(), paid))
	}

	return next, nil
}

func validateDelta(delta decimal.Decimal) error {
	return ValidatePositiveMoney("amount", delta)
}

// outstanding is total minus paid, floored at zero.
func outstanding(total, paid decimal.Decimal) decimal.Decimal {
	rest := total.Sub(paid)
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}
