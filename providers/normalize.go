package providers

import (
	"time"

	"github.com/brdata-dev/brlookup/entity"
	"github.com/brdata-dev/brlookup/format"
)

// FinishAddress completes normalization of an address mapped from a provider
// payload: it verifies the identity field against the requesting key,
// canonicalizes the postal code format, fills the country block and stamps
// provenance. Normalization is total over the declared schema; optional
// fields stay empty, but a missing or mismatched postal code is a
// MalformedPayload failure.
func FinishAddress(addr *entity.Address, key Key, source string, clock Clock) (*entity.Address, error) {
	if addr == nil {
		return nil, MalformedPayload(source, "empty payload", nil)
	}
	if addr.PostalCode == "" {
		return nil, MalformedPayload(source, "payload missing postal code", nil)
	}
	formatted, err := format.FormatCEP(addr.PostalCode)
	if err != nil {
		return nil, MalformedPayload(source, "payload postal code is not a valid CEP", err)
	}
	if addr.Identity() != key.String() {
		return nil, MalformedPayload(source, "payload postal code does not match the requested key", nil)
	}
	addr.PostalCode = formatted
	if addr.Country == (entity.Country{}) {
		addr.Country = entity.Brazil()
	}
	addr.Stamp(source, now(clock))
	return addr, nil
}

// FinishCompany is the company counterpart of FinishAddress. The CNPJ is the
// required identity field; an embedded address is finished opportunistically
// and dropped when unusable rather than failing the whole record.
func FinishCompany(c *entity.Company, key Key, source string, clock Clock) (*entity.Company, error) {
	if c == nil {
		return nil, MalformedPayload(source, "empty payload", nil)
	}
	if c.CNPJ == "" {
		return nil, MalformedPayload(source, "payload missing CNPJ", nil)
	}
	formatted, err := format.FormatCNPJ(c.CNPJ)
	if err != nil {
		return nil, MalformedPayload(source, "payload CNPJ is invalid", err)
	}
	if c.Identity() != key.String() {
		return nil, MalformedPayload(source, "payload CNPJ does not match the requested key", nil)
	}
	if c.LegalName == "" {
		return nil, MalformedPayload(source, "payload missing legal name", nil)
	}
	c.CNPJ = formatted
	if c.Country == (entity.Country{}) {
		c.Country = entity.Brazil()
	}
	if c.Address != nil {
		if c.Address.PostalCode == "" {
			c.Address = nil
		} else if cep, err := format.FormatCEP(c.Address.PostalCode); err != nil {
			c.Address = nil
		} else {
			c.Address.PostalCode = cep
			if c.Address.Country == (entity.Country{}) {
				c.Address.Country = entity.Brazil()
			}
			c.Address.Stamp(source, now(clock))
		}
	}
	c.Stamp(source, now(clock))
	return c, nil
}

func now(clock Clock) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now()
}
