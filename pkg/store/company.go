package store

import (
	"context"

	"barter/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompanyUpdate struct {
	Username *string
	Industry *string
	Email    *string
}

func (s *Store) CreateCompany(ctx context.Context, c *models.Company) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(c).Error
	})
}

func (s *Store) GetCompany(ctx context.Context, id uint) (*models.Company, error) {
	var c models.Company
	if err := first(s.conn(ctx), &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) GetCompanyByUsername(ctx context.Context, username string) (*models.Company, error) {
	var c models.Company
	if err := s.conn(ctx).Where("username = ?", username).First(&c).Error; err != nil {
		return nil, classify(err)
	}
	return &c, nil
}

func (s *Store) ListCompanies(ctx context.Context, page Page) ([]models.Company, error) {
	var companies []models.Company
	err := page.apply(s.conn(ctx).Order("id")).Find(&companies).Error
	return companies, classify(err)
}

func (s *Store) UpdateCompany(ctx context.Context, id uint, u CompanyUpdate) (*models.Company, error) {
	var c models.Company
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &c, id); err != nil {
			return err
		}
		if u.Username != nil {
			c.Username = *u.Username
		}
		if u.Industry != nil {
			c.Industry = *u.Industry
		}
		if u.Email != nil {
			c.Email = *u.Email
		}
		return tx.Omit(clause.Associations).Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCompany removes a company together with its services and the reviews
// it received; reviews it wrote lose their reviewer. The delete is refused as
// a whole while any of its services takes part in a deal.
func (s *Store) DeleteCompany(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, id); err != nil {
			return err
		}
		var blocking int64
		if err := companyDeals(tx, id).Count(&blocking).Error; err != nil {
			return err
		}
		if blocking > 0 {
			return &models.ConstraintError{
				Kind:       models.ErrForeignKeyViolation,
				Table:      "deals",
				Constraint: "services referenced by deals",
			}
		}
		return tx.Delete(&models.Company{}, id).Error
	})
}

// PurgeCompany deletes every deal involving the company's services (their
// contracts go with them, their reviews are detached) and then the company,
// all in one transaction. It returns the number of deals removed.
func (s *Store) PurgeCompany(ctx context.Context, id uint) (int64, error) {
	var removed int64
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, id); err != nil {
			return err
		}
		var deals []models.Deal
		if err := companyDeals(tx, id).Find(&deals).Error; err != nil {
			return err
		}
		for i := range deals {
			if err := s.deleteDeal(tx, &deals[i]); err != nil {
				return err
			}
		}
		removed = int64(len(deals))
		return tx.Delete(&models.Company{}, id).Error
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Store) CompanyServices(ctx context.Context, companyID uint) ([]models.Service, error) {
	var services []models.Service
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, companyID); err != nil {
			return err
		}
		return tx.Where("company_id = ?", companyID).Order("id").Find(&services).Error
	})
	return services, err
}

// CompanyDeals lists the deals in which the company is on either side.
func (s *Store) CompanyDeals(ctx context.Context, companyID uint) ([]models.Deal, error) {
	var deals []models.Deal
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, companyID); err != nil {
			return err
		}
		return withParties(companyDeals(tx, companyID)).Order("id").Find(&deals).Error
	})
	return deals, err
}

func (s *Store) ReviewsWritten(ctx context.Context, companyID uint) ([]models.Review, error) {
	return s.companyReviews(ctx, companyID, "reviewer_id")
}

func (s *Store) ReviewsReceived(ctx context.Context, companyID uint) ([]models.Review, error) {
	return s.companyReviews(ctx, companyID, "reviewee_id")
}

func (s *Store) companyReviews(ctx context.Context, companyID uint, column string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, companyID); err != nil {
			return err
		}
		return tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: companyID}).
			Order("id").Find(&reviews).Error
	})
	return reviews, err
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// CompanyRating averages the ratings a company has received.
func (s *Store) CompanyRating(ctx context.Context, companyID uint) (RatingSummary, error) {
	var summary RatingSummary
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := exists(tx, &models.Company{}, companyID); err != nil {
			return err
		}
		return tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
			Where("reviewee_id = ?", companyID).
			Scan(&summary).Error
	})
	return summary, err
}

func companyServiceIDs(tx *gorm.DB, companyID uint) *gorm.DB {
	return tx.Model(&models.Service{}).Select("id").Where("company_id = ?", companyID)
}

func companyDeals(tx *gorm.DB, companyID uint) *gorm.DB {
	return tx.Model(&models.Deal{}).Where(
		"service_offered_id IN (?) OR service_needed_id IN (?)",
		companyServiceIDs(tx, companyID), companyServiceIDs(tx, companyID),
	)
}
