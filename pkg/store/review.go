package store

import (
	"context"

	"barter/pkg/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewUpdate struct {
	Rating  *int
	Comment *string
}

func (s *Store) CreateReview(ctx context.Context, r *models.Review) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(r).Error
	})
}

func (s *Store) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	var r models.Review
	if err := first(s.conn(ctx).Preload("Reviewer").Preload("Reviewee"), &r, id); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReview changes the rating or comment. The parties and the deal of a
// review are fixed once written.
func (s *Store) UpdateReview(ctx context.Context, id uint, u ReviewUpdate) (*models.Review, error) {
	var r models.Review
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &r, id); err != nil {
			return err
		}
		if u.Rating != nil {
			r.Rating = *u.Rating
		}
		if u.Comment != nil {
			r.Comment = models.String(*u.Comment)
		}
		return tx.Omit(clause.Associations).Save(&r).Error
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) DeleteReview(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Review{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
