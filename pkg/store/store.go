// Package store exposes create/read/update/delete and relationship traversal
// over the barter schema. Every write runs in a single transaction and every
// error is classified into the models constraint kinds or ErrNotFound.
package store

import (
	"context"

	"barter/pkg/models"

	"gorm.io/gorm"
)

type Store struct {
	db        *gorm.DB
	lifecycle models.DealLifecycle
	docRoot   string
}

type Option func(*Store)

// WithDealLifecycle installs the hook consulted before deals are created or deleted.
func WithDealLifecycle(l models.DealLifecycle) Option {
	return func(s *Store) {
		if l != nil {
			s.lifecycle = l
		}
	}
}

// WithContractDocRoot makes CreateContract assign a document path under root
// when the caller leaves DocPath empty.
func WithContractDocRoot(root string) Option {
	return func(s *Store) {
		s.docRoot = root
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, lifecycle: models.NoLifecycle{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Page bounds list queries. A zero Limit means no limit.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(tx *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		tx = tx.Limit(p.Limit)
	}
	if p.Offset > 0 {
		tx = tx.Offset(p.Offset)
	}
	return tx
}

func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return classify(s.db.WithContext(ctx).Transaction(fn))
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func first(tx *gorm.DB, dest interface{}, id uint) error {
	return classify(tx.First(dest, id).Error)
}

// exists fails with ErrNotFound when no row of model has the given id.
func exists(tx *gorm.DB, model interface{}, id uint) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return classify(err)
	}
	if count == 0 {
		return classify(gorm.ErrRecordNotFound)
	}
	return nil
}

// Ping checks that the underlying database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
