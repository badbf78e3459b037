package repository

import (
	"context"

	"github.com/meddela/dispatch/internal/model"
	"gorm.io/gorm"
)

type TemplateRepository interface {
	IncrementUsage(ctx context.Context, id int64) error
}

type Template struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &Template{db: db}
}

func (t *Template) IncrementUsage(ctx context.Context, id int64) error {
	return GetTx(ctx, t.db).Model(&model.Template{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1")).Error
}
