package models

import "gorm.io/gorm"

func (s *Service) IsOffer() bool {
	return s.OfferOrNeed == nil || *s.OfferOrNeed
}

func (s *Service) IsActive() bool {
	return s.Active == nil || *s.Active
}

func (s *Service) Kind() string {
	if s.IsOffer() {
		return "offer"
	}
	return "need"
}

// The party accessors below follow loaded associations only; they return nil
// (or "") when the chain was not preloaded. Nothing here is stored.

func (d *Deal) OfferingCompany() *Company {
	if d == nil || d.ServiceOffered == nil {
		return nil
	}
	return d.ServiceOffered.Company
}

func (d *Deal) NeedingCompany() *Company {
	if d == nil || d.ServiceNeeded == nil {
		return nil
	}
	return d.ServiceNeeded.Company
}

func (d *Deal) OfferingCompanyEmail() string {
	return emailOf(d.OfferingCompany())
}

func (d *Deal) NeedingCompanyEmail() string {
	return emailOf(d.NeedingCompany())
}

func (c *Contract) OfferingCompany() *Company {
	return c.deal().OfferingCompany()
}

func (c *Contract) NeedingCompany() *Company {
	return c.deal().NeedingCompany()
}

func (c *Contract) OfferingCompanyEmail() string {
	return c.deal().OfferingCompanyEmail()
}

func (c *Contract) NeedingCompanyEmail() string {
	return c.deal().NeedingCompanyEmail()
}

func (c *Contract) deal() *Deal {
	if c == nil {
		return nil
	}
	return c.Deal
}

func emailOf(c *Company) string {
	if c == nil {
		return ""
	}
	return c.Email
}

// DealLifecycle is consulted inside the write transaction before a deal is
// created or deleted. Returning an error aborts the transaction.
type DealLifecycle interface {
	BeforeCreateDeal(tx *gorm.DB, deal *Deal) error
	BeforeDeleteDeal(tx *gorm.DB, deal *Deal) error
}

// NoLifecycle accepts every deal.
type NoLifecycle struct{}

func (NoLifecycle) BeforeCreateDeal(*gorm.DB, *Deal) error { return nil }
func (NoLifecycle) BeforeDeleteDeal(*gorm.DB, *Deal) error { return nil }
