package store

import (
	"context"

	"barter/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ServiceFilter narrows ListServices. Nil fields do not filter.
type ServiceFilter struct {
	CompanyID *uint
	Offer     *bool
	Active    *bool
	Page
}

type ServiceUpdate struct {
	OfferOrNeed *bool
	Title       *string
	Description *string
	Active      *bool
}

func (s *Store) CreateService(ctx context.Context, svc *models.Service) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(svc).Error
	})
}

func (s *Store) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var svc models.Service
	if err := first(s.conn(ctx).Preload("Company"), &svc, id); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *Store) ListServices(ctx context.Context, f ServiceFilter) ([]models.Service, error) {
	tx := s.conn(ctx).Order("id")
	if f.CompanyID != nil {
		tx = tx.Where("company_id = ?", *f.CompanyID)
	}
	if f.Offer != nil {
		tx = tx.Where("offer_or_need = ?", *f.Offer)
	}
	if f.Active != nil {
		tx = tx.Where("active = ?", *f.Active)
	}
	var services []models.Service
	err := f.Page.apply(tx).Find(&services).Error
	return services, classify(err)
}

func (s *Store) UpdateService(ctx context.Context, id uint, u ServiceUpdate) (*models.Service, error) {
	var svc models.Service
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &svc, id); err != nil {
			return err
		}
		if u.OfferOrNeed != nil {
			svc.OfferOrNeed = models.Bool(*u.OfferOrNeed)
		}
		if u.Title != nil {
			svc.Title = *u.Title
		}
		if u.Description != nil {
			svc.Description = models.String(*u.Description)
		}
		if u.Active != nil {
			svc.Active = models.Bool(*u.Active)
		}
		return tx.Omit(clause.Associations).Save(&svc).Error
	})
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// DeactivateService withdraws a listing without touching the deals that use it.
func (s *Store) DeactivateService(ctx context.Context, id uint) (*models.Service, error) {
	return s.UpdateService(ctx, id, ServiceUpdate{Active: models.Bool(false)})
}

// DeleteService is refused while any deal references the service.
func (s *Store) DeleteService(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Service{}, id); err != nil {
			return err
		}
		var referencing int64
		if err := serviceDeals(tx, id).Count(&referencing).Error; err != nil {
			return err
		}
		if referencing > 0 {
			return &models.ConstraintError{
				Kind:       models.ErrForeignKeyViolation,
				Table:      "deals",
				Constraint: "service referenced by deals",
			}
		}
		return tx.Delete(&models.Service{}, id).Error
	})
}

func (s *Store) DealsOffered(ctx context.Context, serviceID uint) ([]models.Deal, error) {
	return s.dealsWhere(ctx, serviceID, "service_offered_id = ?", serviceID)
}

func (s *Store) DealsNeeded(ctx context.Context, serviceID uint) ([]models.Deal, error) {
	return s.dealsWhere(ctx, serviceID, "service_needed_id = ?", serviceID)
}

// ServiceDeals lists the deals using the service in either role.
func (s *Store) ServiceDeals(ctx context.Context, serviceID uint) ([]models.Deal, error) {
	return s.dealsWhere(ctx, serviceID, "service_offered_id = ? OR service_needed_id = ?", serviceID, serviceID)
}

func (s *Store) dealsWhere(ctx context.Context, serviceID uint, query string, args ...interface{}) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Service{}, serviceID); err != nil {
			return err
		}
		return tx.Where(query, args...).Order("id").Find(&deals).Error
	})
	return deals, err
}

func serviceDeals(tx *gorm.DB, serviceID uint) *gorm.DB {
	return tx.Model(&models.Deal{}).Where("service_offered_id = ? OR service_needed_id = ?", serviceID, serviceID)
}
