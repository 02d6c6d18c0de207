package models

import (
	"time"
)

type Company struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Username string    `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Industry string    `gorm:"size:80;not null" json:"industry"`
	JoinDate time.Time `gorm:"not null;autoCreateTime" json:"joinDate"`
	Email    string    `gorm:"type:text;not null;uniqueIndex" json:"email"`
}

// Service is an offer (OfferOrNeed true) or a need advertised by a company.
// The flags are pointers so that an explicit false survives the column default.
type Service struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	CompanyID   uint     `gorm:"not null;index" json:"companyId"`
	OfferOrNeed *bool    `gorm:"not null;default:true" json:"offerOrNeed"`
	Title       string   `gorm:"size:120;not null" json:"title"`
	Description *string  `gorm:"type:text" json:"description,omitempty"`
	Active      *bool    `gorm:"not null;default:true" json:"active"`
	Company     *Company `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"company,omitempty"`
}

type Deal struct {
	ID               uint     `gorm:"primaryKey" json:"id"`
	ServiceOfferedID uint     `gorm:"not null;index" json:"serviceOfferedId"`
	ServiceNeededID  uint     `gorm:"not null;index;check:distinct_services,service_offered_id <> service_needed_id" json:"serviceNeededId"`
	ServiceOffered   *Service `gorm:"foreignKey:ServiceOfferedID;constraint:OnDelete:RESTRICT" json:"serviceOffered,omitempty"`
	ServiceNeeded    *Service `gorm:"foreignKey:ServiceNeededID;constraint:OnDelete:RESTRICT" json:"serviceNeeded,omitempty"`
}

// Contract is the document formalizing a deal. A nil EndDate means open-ended.
type Contract struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	DealID    uint       `gorm:"not null;index" json:"dealId"`
	DocName   string     `gorm:"size:40;not null" json:"docName"`
	DocPath   string     `gorm:"size:520;not null" json:"docPath"`
	StartDate time.Time  `gorm:"not null;autoCreateTime" json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"createdAt"`
	Deal      *Deal      `gorm:"foreignKey:DealID;constraint:OnDelete:CASCADE" json:"deal,omitempty"`
}

// Review is feedback from one company about another. ReviewerID becomes nil
// when the reviewer is deleted; the review itself is kept.
type Review struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DealID     *uint     `gorm:"index" json:"dealId,omitempty"`
	ReviewerID *uint     `gorm:"index" json:"reviewerId,omitempty"`
	RevieweeID uint      `gorm:"not null;index" json:"revieweeId"`
	Rating     int       `gorm:"not null;check:rating_range,rating >= 1 AND rating <= 5" json:"rating"`
	Comment    *string   `gorm:"type:text" json:"comment,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"createdAt"`
	Deal       *Deal     `gorm:"foreignKey:DealID;constraint:OnDelete:SET NULL" json:"-"`
	Reviewer   *Company  `gorm:"foreignKey:ReviewerID;constraint:OnDelete:SET NULL" json:"reviewer,omitempty"`
	Reviewee   *Company  `gorm:"foreignKey:RevieweeID;constraint:OnDelete:CASCADE" json:"reviewee,omitempty"`
}

func (Company) TableName() string  { return "companies" }
func (Service) TableName() string  { return "services" }
func (Deal) TableName() string     { return "deals" }
func (Contract) TableName() string { return "contracts" }
func (Review) TableName() string   { return "reviews" }

// All lists the schema in creation order.
func All() []interface{} {
	return []interface{}{&Company{}, &Service{}, &Deal{}, &Contract{}, &Review{}}
}

const (
	MinRating = 1
	MaxRating = 5
)

// Bool returns a pointer to b, for the OfferOrNeed and Active flags.
func Bool(b bool) *bool {
	return &b
}

func String(s string) *string {
	return &s
}
