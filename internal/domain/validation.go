package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Pagination limits
const (
	DefaultPageSize = 50
	MaxPageSize     = 1000
)

// Valid currency codes (ISO 4217)
var validCurrencies = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true,
	"CNY": true, "AUD": true, "CAD": true, "CHF": true,
	"SEK": true, "NZD": true, "KRW": true, "SGD": true,
	"NOK": true, "MXN": true, "INR": true, "BRL": true,
	"ZAR": true, "RUB": true, "TRY": true, "HKD": true,
	"AED": true, "SAR": true,
}

var accountCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._:/-]{0,63}$`)

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// ValidateCurrency validates currency code
func ValidateCurrency(currency string) error {
	if !validCurrencies[NormalizeCurrency(currency)] {
		return NewFieldError("currency", fmt.Sprintf("%s is not a valid ISO 4217 currency code", currency))
	}
	return nil
}

// ValidateAccountCode validates a debit/credit account code
func ValidateAccountCode(field, code string) error {
	if !accountCodeRegex.MatchString(code) {
		return NewFieldError(field, "invalid account code")
	}
	return nil
}

// ValidatePagination validates and limits pagination parameters
func ValidatePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
