package entity

import (
	"strings"
	"time"
)

// Company is the canonical record for a Brazilian legal entity (CNPJ)
// lookup.
type Company struct {
	// CNPJ in the formatted XX.XXX.XXX/XXXX-XX form. Identity field.
	CNPJ string `json:"cnpj"`

	LegalName string `json:"legal_name"`           // razão social
	TradeName string `json:"trade_name,omitempty"` // nome fantasia

	Status           string `json:"status,omitempty"`
	RegistrationDate string `json:"registration_date,omitempty"` // data de início de atividade

	Address *Address `json:"address,omitempty"`

	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`

	PrimaryActivity string  `json:"primary_activity,omitempty"` // CNAE principal
	CompanySize     string  `json:"company_size,omitempty"`     // porte
	ShareCapital    float64 `json:"share_capital,omitempty"`
	LegalNature     string  `json:"legal_nature,omitempty"`

	Country Country `json:"country"`

	Provenance
}

var _ Entity = (*Company)(nil)

// Identity returns the CNPJ digits.
func (c *Company) Identity() string { return digitsOf(c.CNPJ) }

// Kind reports KindCompany.
func (c *Company) Kind() Kind { return KindCompany }

// Stamp records provenance.
func (c *Company) Stamp(source string, at time.Time) { c.Provenance.Stamp(source, at) }

// DisplayName returns the trade name when present, otherwise the legal name.
func (c *Company) DisplayName() string {
	if c.TradeName != "" {
		return c.TradeName
	}
	return c.LegalName
}

// IsActive reports whether the registration status marks the company active.
func (c *Company) IsActive() bool {
	switch strings.ToUpper(c.Status) {
	case "ATIVA", "ACTIVE":
		return true
	}
	return false
}
