package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"
)

func required(table, column, value string) error {
	if strings.TrimSpace(value) == "" {
		return violation(ErrNotNullViolation, table, column)
	}
	return nil
}

func maxLen(table, column, value string, n int) error {
	if utf8.RuneCountInString(value) > n {
		return violation(ErrCheckViolation, table, column+"_length")
	}
	return nil
}

func requiredRef(table, column string, id uint) error {
	if id == 0 {
		return violation(ErrNotNullViolation, table, column)
	}
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Company) Validate() error {
	return firstErr(
		required("companies", "username", c.Username),
		maxLen("companies", "username", c.Username, 80),
		required("companies", "industry", c.Industry),
		maxLen("companies", "industry", c.Industry, 80),
		required("companies", "email", c.Email),
	)
}

func (c *Company) BeforeSave(*gorm.DB) error {
	return c.Validate()
}

func (s *Service) Validate() error {
	return firstErr(
		requiredRef("services", "company_id", s.CompanyID),
		required("services", "title", s.Title),
		maxLen("services", "title", s.Title, 120),
	)
}

func (s *Service) BeforeSave(*gorm.DB) error {
	return s.Validate()
}

// Validate rejects a deal pairing a service with itself before anything is written.
func (d *Deal) Validate() error {
	if err := firstErr(
		requiredRef("deals", "service_offered_id", d.ServiceOfferedID),
		requiredRef("deals", "service_needed_id", d.ServiceNeededID),
	); err != nil {
		return err
	}
	if d.ServiceOfferedID == d.ServiceNeededID {
		return violation(ErrCheckViolation, "deals", "distinct_services")
	}
	return nil
}

func (d *Deal) BeforeSave(*gorm.DB) error {
	return d.Validate()
}

func (c *Contract) Validate() error {
	return firstErr(
		requiredRef("contracts", "deal_id", c.DealID),
		required("contracts", "doc_name", c.DocName),
		maxLen("contracts", "doc_name", c.DocName, 40),
		required("contracts", "doc_path", c.DocPath),
		maxLen("contracts", "doc_path", c.DocPath, 520),
	)
}

func (c *Contract) BeforeSave(*gorm.DB) error {
	return c.Validate()
}

func (r *Review) Validate() error {
	if err := requiredRef("reviews", "reviewee_id", r.RevieweeID); err != nil {
		return err
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return violation(ErrCheckViolation, "reviews", "rating_range")
	}
	return nil
}

// BeforeCreate requires a reviewer. Only the reviewer's deletion may clear it later.
func (r *Review) BeforeCreate(*gorm.DB) error {
	if r.ReviewerID == nil {
		return violation(ErrNotNullViolation, "reviews", "reviewer_id")
	}
	return requiredRef("reviews", "reviewer_id", *r.ReviewerID)
}

func (r *Review) BeforeSave(*gorm.DB) error {
	return r.Validate()
}

func (c Company) String() string {
	return fmt.Sprintf("<Company %s>", c.Username)
}

func (s Service) String() string {
	owner := "?"
	if s.Company != nil {
		owner = s.Company.Username
	}
	return fmt.Sprintf("<Service %d %s %s (%s)>", s.ID, s.Kind(), s.Title, owner)
}

func (d Deal) String() string {
	return fmt.Sprintf("<Deal %d offered=%d needed=%d>", d.ID, d.ServiceOfferedID, d.ServiceNeededID)
}
