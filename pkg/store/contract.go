package store

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"barter/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxDocPath = 520

type ContractUpdate struct {
	DocName   *string
	DocPath   *string
	StartDate *time.Time
	EndDate   *time.Time
	// OpenEnded clears EndDate; it wins over EndDate.
	OpenEnded bool
}

// CreateContract attaches a contract to an existing deal. With a document
// root configured, an empty DocPath is filled by NewContractDocPath.
func (s *Store) CreateContract(ctx context.Context, c *models.Contract) error {
	if c.DocPath == "" && s.docRoot != "" && c.DealID != 0 {
		p, err := NewContractDocPath(s.docRoot, c.DealID, c.DocName)
		if err != nil {
			return err
		}
		c.DocPath = p
	}
	return s.transaction(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(c).Error
	})
}

// GetContract loads a contract with its deal, both services and both
// companies, so the forwarded party accessors resolve.
func (s *Store) GetContract(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	tx := s.conn(ctx).
		Preload("Deal.ServiceOffered.Company").
		Preload("Deal.ServiceNeeded.Company")
	if err := first(tx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) UpdateContract(ctx context.Context, id uint, u ContractUpdate) (*models.Contract, error) {
	var c models.Contract
	err := s.transaction(ctx, func(tx *gorm.DB) error {
		if err := first(tx, &c, id); err != nil {
			return err
		}
		if u.DocName != nil {
			c.DocName = *u.DocName
		}
		if u.DocPath != nil {
			c.DocPath = *u.DocPath
		}
		if u.StartDate != nil {
			c.StartDate = *u.StartDate
		}
		if u.EndDate != nil {
			end := *u.EndDate
			c.EndDate = &end
		}
		if u.OpenEnded {
			c.EndDate = nil
		}
		return tx.Omit(clause.Associations).Save(&c).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteContract(ctx context.Context, id uint) error {
	return s.transaction(ctx, func(tx *gorm.DB) error {
		res := tx.Delete(&models.Contract{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// NewContractDocPath builds "<root>/deals/<dealID>/<uuid>-<slug>" for a new
// contract document. root may be a filesystem path or a URL prefix.
func NewContractDocPath(root string, dealID uint, docName string) (string, error) {
	name := uuid.NewString()
	if slug := slugify(docName); slug != "" {
		name += "-" + slug
	}
	p := strings.TrimRight(root, "/") + "/deals/" + strconv.FormatUint(uint64(dealID), 10) + "/" + name
	if len(p) > maxDocPath {
		return "", &models.ConstraintError{
			Kind:       models.ErrCheckViolation,
			Table:      "contracts",
			Constraint: "doc_path_length",
			Err:        fmt.Errorf("generated path is %d characters", len(p)),
		}
	}
	return p, nil
}

func slugify(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			out = append(out, byte(r))
		case r == '.' && len(out) > 0:
			out = append(bytes.TrimRight(out, "-"), '.')
		case len(out) > 0 && out[len(out)-1] != '-' && out[len(out)-1] != '.':
			out = append(out, '-')
		}
	}
	return strings.Trim(string(out), "-.")
}
