package store

import (
	"context"

	"barter/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DealUpdate struct {
	ServiceOfferedID *uint
	ServiceNeededID  *uint
}

// withParties preloads both services and their owning companies so the
// derived party accessors on Deal resolve.
func withParties(tx *gorm.DB) *gorm.DB {
	return tx.Preload("ServiceOffered.Company").Preload("ServiceNeeded.Company")
}

// CreateDeal pairs an offered and a needed service. A self-pairing is
// rejected before anything is written.
func (s *Store) CreateDeal(ctx context.Context, d *models.Deal) error {
	if err := d.Validate(); err != nil {
		return err
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := s.lifecycle.BeforeCreateDeal(tx, d); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(d).Error
	})
}

func (s *Store) GetDeal(ctx context.Context, id uint) (*models.Deal, error) {
	var d models.Deal
	if err := first(withParties(s.conn(ctx)), &d, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) ListDeals(ctx context.Context, page Page) ([]models.Deal, error) {
	var deals []models.Deal
	err := page.apply(withParties(s.conn(ctx)).Order("id")).Find(&deals).Error
	return deals, classify(err)
}

// UpdateDeal re-points a deal at other services. The returned deal carries
// freshly resolved parties.
func (s *Store) UpdateDeal(ctx context.Context, id uint, u DealUpdate) (*models.Deal, error) {
	var d models.Deal
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &d, id); err != nil {
			return err
		}
		if u.ServiceOfferedID != nil {
			d.ServiceOfferedID = *u.ServiceOfferedID
		}
		if u.ServiceNeededID != nil {
			d.ServiceNeededID = *u.ServiceNeededID
		}
		if err := tx.Omit(clause.Associations).Save(&d).Error; err != nil {
			return err
		}
		d = models.Deal{}
		return first(withParties(tx), &d, id)
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDeal removes a deal and its contracts; reviews of the deal are kept
// with their deal reference cleared.
func (s *Store) DeleteDeal(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		var d models.Deal
		if err := first(tx, &d, id); err != nil {
			return err
		}
		return s.deleteDeal(tx, &d)
	})
}

func (s *Store) deleteDeal(tx *gorm.DB, d *models.Deal) error {
	if err := s.lifecycle.BeforeDeleteDeal(tx, d); err != nil {
		return err
	}
	return tx.Delete(&models.Deal{}, d.ID).Error
}

func (s *Store) DealContracts(ctx context.Context, dealID uint) ([]models.Contract, error) {
	var contracts []models.Contract
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Deal{}, dealID); err != nil {
			return err
		}
		return tx.Where("deal_id = ?", dealID).Order("id").Find(&contracts).Error
	})
	return contracts, err
}

func (s *Store) DealReviews(ctx context.Context, dealID uint) ([]models.Review, error) {
	var reviews []models.Review
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Deal{}, dealID); err != nil {
			return err
		}
		return tx.Where("deal_id = ?", dealID).Order("id").Find(&reviews).Error
	})
	return reviews, err
}
