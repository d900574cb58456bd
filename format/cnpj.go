package format

import (
	"errors"
	"fmt"
)

const cnpjLength = 14

// ErrInvalidCNPJ is returned when the input is not a valid CNPJ, including
// check digit failures.
var ErrInvalidCNPJ = errors.New("invalid CNPJ")

// CleanCNPJ strips punctuation and validates length, repeated-digit
// sequences and the two verification digits.
func CleanCNPJ(raw string) (string, error) {
	digits := onlyDigits(raw)
	if len(digits) != cnpjLength {
		return "", fmt.Errorf("%w: %q must have %d digits, got %d", ErrInvalidCNPJ, raw, cnpjLength, len(digits))
	}
	if allSame(digits) {
		return "", fmt.Errorf("%w: %q has all identical digits", ErrInvalidCNPJ, raw)
	}
	if digits[12] != cnpjCheckDigit(digits[:12]) || digits[13] != cnpjCheckDigit(digits[:13]) {
		return "", fmt.Errorf("%w: %q failed check digit validation", ErrInvalidCNPJ, raw)
	}
	return digits, nil
}

// FormatCNPJ returns the canonical XX.XXX.XXX/XXXX-XX form.
func FormatCNPJ(raw string) (string, error) {
	d, err := CleanCNPJ(raw)
	if err != nil {
		return "", err
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:], nil
}

// cnpjCheckDigit computes the modulo-11 verification digit for the given
// prefix (12 digits for the first, 13 for the second).
func cnpjCheckDigit(prefix string) byte {
	weight := 2
	sum := 0
	for i := len(prefix) - 1; i >= 0; i-- {
		sum += int(prefix[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	d := 11 - sum%11
	if d >= 10 {
		d = 0
	}
	return byte('0' + d)
}

func allSame(s string) bool {
	for i := 1; i < len(s); i++ {
		if s[i] != s[0] {
			return false
		}
	}
	return true
}
