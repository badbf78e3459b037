package repository

import (
	"context"
	"errors"

	"github.com/meddela/dispatch/internal/model"
	"gorm.io/gorm"
)

var ErrOrganizationNotFound = errors.New("ORGANIZATION_NOT_FOUND")
var ErrInsufficientCredits = errors.New("INSUFFICIENT_CREDITS")

type OrganizationRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Organization, error)
	DeductCredits(ctx context.Context, id int64, amount int) error
}

type Organization struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &Organization{db: db}
}

func (o *Organization) GetByID(ctx context.Context, id int64) (*model.Organization, error) {
	var org model.Organization

	err := GetTx(ctx, o.db).Where("id = ?", id).First(&org).Error
	if err == nil {
		return &org, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}

	return nil, err
}

// DeductCredits decrements sms_credits atomically. The guard keeps the
// balance from ever going negative under concurrent senders; zero rows
// affected means the balance was exhausted between check and deduct.
func (o *Organization) DeductCredits(ctx context.Context, id int64, amount int) error {
	result := GetTx(ctx, o.db).Model(&model.Organization{}).
		Where("id = ? AND sms_credits >= ?", id, amount).
		UpdateColumn("sms_credits", gorm.Expr("sms_credits - ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrInsufficientCredits
	}

	return nil
}
