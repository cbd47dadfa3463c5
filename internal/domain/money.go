package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money constraints
const (
	MoneyScale     = 2
	MaxMoneyAmount = "1000000000000" // 1 trillion
)

var maxMoney = decimal.RequireFromString(MaxMoneyAmount)

// Rates are stored at fixed precision; anything finer would be rounded by
// the database and drift from the value computed here.
const (
	ExchangeRateScale = 6
	InterestRateScale = 4
)

var (
	exchangeRateLimit = decimal.New(1, 12) // NUMERIC(18,6)
	interestRateLimit = decimal.New(1, 5)  // NUMERIC(9,4)
)

// validateScaledRate checks that rate fits a NUMERIC column with scale
// fractional digits whose integer part stays below limit.
func validateScaledRate(field string, rate decimal.Decimal, scale int32, limit decimal.Decimal) error {
	if !rate.Equal(rate.Truncate(scale)) {
		return NewFieldError(field, fmt.Sprintf("at most %d decimal places", scale))
	}
	if rate.GreaterThanOrEqual(limit) {
		return NewFieldError(field, "must be below "+limit.String())
	}
	return nil
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// ParseMoney parses a user supplied amount. More than two fractional digits
// are rejected rather than rounded.
func ParseMoney(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewFieldError(field, "not a decimal number")
	}
	if err := ValidateMoney(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateMoney checks that d is a non-negative amount with at most two
// fractional digits.
func ValidateMoney(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return NewFieldError(field, "must not be negative")
	}
	if !d.Equal(Round2(d)) {
		return NewFieldError(field, fmt.Sprintf("at most %d decimal places", MoneyScale))
	}
	if d.GreaterThan(maxMoney) {
		return NewFieldError(field, "exceeds maximum amount "+MaxMoneyAmount)
	}
	return nil
}

// ValidatePositiveMoney is ValidateMoney plus a strictly positive check.
func ValidatePositiveMoney(field string, d decimal.Decimal) error {
	if err := ValidateMoney(field, d); err != nil {
		return err
	}
	if d.IsZero() {
		return NewFieldError(field, "must be greater than zero")
	}
	return nil
}
