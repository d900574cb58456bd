package entity

import "time"

// Address is the canonical record for a postal code lookup. Field names
// follow the provider-agnostic shape; provider payloads are mapped into it by
// each adapter's normalizer.
type Address struct {
	// PostalCode in the formatted XXXXX-XXX form. Identity field.
	PostalCode string `json:"postal_code"`

	Street       string `json:"street,omitempty"`
	Unit         string `json:"unit,omitempty"` // complemento
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"` // UF

	// IBGECode and AreaCode are Brazilian extras some providers return.
	IBGECode string `json:"ibge_code,omitempty"`
	AreaCode string `json:"area_code,omitempty"` // DDD

	Country Country `json:"country"`

	Provenance
}

var _ Entity = (*Address)(nil)

// Identity returns the postal code digits.
func (a *Address) Identity() string { return digitsOf(a.PostalCode) }

// Kind reports KindAddress.
func (a *Address) Kind() Kind { return KindAddress }

// Stamp records provenance.
func (a *Address) Stamp(source string, at time.Time) { a.Provenance.Stamp(source, at) }
