// Package format cleans and formats the Brazilian identifiers accepted as
// lookup input: postal codes (CEP) and legal entity registrations (CNPJ).
// Adapters and lookup keys always work on the cleaned, digits-only form.
package format

import (
	"errors"
	"fmt"
	"strings"
)

const cepLength = 8

// ErrInvalidCEP is returned when the input cannot be cleaned into a valid
// 8-digit postal code.
var ErrInvalidCEP = errors.New("invalid postal code")

// CleanCEP strips punctuation and validates the result is exactly 8 digits.
func CleanCEP(raw string) (string, error) {
	digits := onlyDigits(raw)
	if len(digits) != cepLength {
		return "", fmt.Errorf("%w: %q must have %d digits, got %d", ErrInvalidCEP, raw, cepLength, len(digits))
	}
	return digits, nil
}

// FormatCEP returns the canonical XXXXX-XXX form.
func FormatCEP(raw string) (string, error) {
	digits, err := CleanCEP(raw)
	if err != nil {
		return "", err
	}
	return digits[:5] + "-" + digits[5:], nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
