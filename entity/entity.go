package entity

import (
	"strings"
	"time"
)

// Kind identifies which lookup family a canonical record belongs to.
type Kind string

const (
	// KindAddress marks postal code (CEP) lookups.
	KindAddress Kind = "address"

	// KindCompany marks legal entity (CNPJ) lookups.
	KindCompany Kind = "company"
)

// Entity is a canonical, provider-agnostic lookup result.
type Entity interface {
	// Identity returns the normalized identifier this record answers for
	// (digits only, no punctuation).
	Identity() string

	// Kind reports the lookup family of the record.
	Kind() Kind

	// Stamp records which provider produced the record and when it was
	// normalized.
	Stamp(source string, at time.Time)
}

// Country holds ISO 3166 country information.
type Country struct {
	Code      string `json:"code,omitempty"`    // ISO 3166-1 alpha-2
	Alpha3    string `json:"alpha3,omitempty"`  // ISO 3166-1 alpha-3
	Numeric   string `json:"numeric,omitempty"` // ISO 3166-1 numeric
	Name      string `json:"name,omitempty"`
	LocalName string `json:"local_name,omitempty"`
}

// Brazil returns the fixed country block used by all Brazilian providers.
func Brazil() Country {
	return Country{
		Code:      "BR",
		Alpha3:    "BRA",
		Numeric:   "076",
		Name:      "Brazil",
		LocalName: "Brasil",
	}
}

// Provenance records which provider produced a record and when.
type Provenance struct {
	// VerificationSource is the name of the adapter that produced the record.
	VerificationSource string `json:"verification_source"`

	// VerifiedAt is the normalization time, not the original call time.
	VerifiedAt time.Time `json:"verified_at"`

	// IsVerified is true once the record has been normalized from a live
	// provider response.
	IsVerified bool `json:"is_verified"`
}

// Stamp marks the record as verified by the given source.
func (p *Provenance) Stamp(source string, at time.Time) {
	p.VerificationSource = source
	p.VerifiedAt = at
	p.IsVerified = true
}

// digitsOf strips everything but ASCII digits.
func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
