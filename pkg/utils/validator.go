package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	emailRegex        = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	currencyCodeRegex = regexp.MustCompile(`^[A-Za-z]{3}$`)
	designIDRegex     = regexp.MustCompile(`^[a-zA-Z0-9_\-]{1,64}$`)
	controlCharsRegex = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateEmail validates an email address
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateCurrencyCode validates an ISO 4217 style three-letter code
func ValidateCurrencyCode(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return fmt.Errorf("currency code must be three letters: %s", code)
	}
	return nil
}

// ValidateDesignID validates a design identifier
func ValidateDesignID(id string) error {
	if !designIDRegex.MatchString(id) {
		return fmt.Errorf("invalid design id: %s", id)
	}
	return nil
}

// ValidateQuantity validates a line item quantity
func ValidateQuantity(q int) error {
	if q < 0 {
		return fmt.Errorf("quantity must not be negative: %d", q)
	}
	return nil
}

// ValidateAmount validates that a monetary amount is not negative
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("%s must not be negative: %s", field, amount.StringFixed(2))
	}
	return nil
}

// SanitizeString removes control characters and surrounding whitespace
func SanitizeString(s string) string {
	return strings.TrimSpace(controlCharsRegex.ReplaceAllString(s, ""))
}
