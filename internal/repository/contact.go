package repository

import (
	"context"
	"errors"

	"github.com/meddela/dispatch/internal/model"
	"gorm.io/gorm"
)

var ErrContactNotFound = errors.New("CONTACT_NOT_FOUND")

type ContactRepository interface {
	GetByID(ctx context.Context, organizationID, id int64) (*model.Contact, error)
	GetByIDs(ctx context.Context, organizationID int64, ids []int64) ([]model.Contact, error)
	FindByTags(ctx context.Context, organizationID int64, tags []string) ([]model.Contact, error)
	IncrementSent(ctx context.Context, id int64) error
}

type Contact struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &Contact{db: db}
}

func (c *Contact) GetByID(ctx context.Context, organizationID, id int64) (*model.Contact, error) {
	var contact model.Contact

	err := GetTx(ctx, c.db).
		Where("id = ? AND organization_id = ? AND deleted_at IS NULL", id, organizationID).
		First(&contact).Error
	if err == nil {
		return &contact, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}

	return nil, err
}

func (c *Contact) GetByIDs(ctx context.Context, organizationID int64, ids []int64) ([]model.Contact, error) {
	var contacts []model.Contact

	if len(ids) == 0 {
		return contacts, nil
	}

	err := GetTx(ctx, c.db).
		Where("id IN ? AND organization_id = ? AND deleted_at IS NULL", ids, organizationID).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func (c *Contact) FindByTags(ctx context.Context, organizationID int64, tags []string) ([]model.Contact, error) {
	var contacts []model.Contact

	query := GetTx(ctx, c.db).
		Where("organization_id = ? AND deleted_at IS NULL", organizationID)

	for _, tag := range tags {
		query = query.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", tag)
	}

	err := query.Order("id ASC").Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	return contacts, nil
}

func (c *Contact) IncrementSent(ctx context.Context, id int64) error {
	result := GetTx(ctx, c.db).Model(&model.Contact{}).
		Where("id = ?", id).
		UpdateColumn("total_sms_sent", gorm.Expr("total_sms_sent + 1"))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrContactNotFound
	}

	return nil
}
