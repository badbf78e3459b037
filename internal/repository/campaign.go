package repository

import (
	"context"
	"errors"
	"time"

	"github.com/meddela/dispatch/internal/model"
	"gorm.io/gorm"
)

var ErrCampaignNotFound = errors.New("CAMPAIGN_NOT_FOUND")

type CampaignRepository interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]model.Campaign, error)
	MarkSending(ctx context.Context, id int64) error
	Reschedule(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64, sentCount, failedCount int, totalCost float64, completedAt time.Time) error
}

type Campaign struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &Campaign{db: db}
}

func (c *Campaign) FindDue(ctx context.Context, now time.Time, limit int) ([]model.Campaign, error) {
	var campaigns []model.Campaign

	err := GetTx(ctx, c.db).
		Where("status = ? AND scheduled_for <= ?", model.CampaignStatusScheduled, now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}

	return campaigns, nil
}

// MarkSending transitions scheduled -> sending. The status guard makes
// the transition single-shot when two invocations race over the same
// due campaign.
func (c *Campaign) MarkSending(ctx context.Context, id int64) error {
	result := GetTx(ctx, c.db).Model(&model.Campaign{}).
		Where("id = ? AND status = ?", id, model.CampaignStatusScheduled).
		Updates(map[string]interface{}{
			"status":     model.CampaignStatusSending,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

// Reschedule reverts sending back to scheduled so FindDue picks the
// campaign up on the next invocation. Used when a claimed campaign
// could not actually start.
func (c *Campaign) Reschedule(ctx context.Context, id int64) error {
	result := GetTx(ctx, c.db).Model(&model.Campaign{}).
		Where("id = ? AND status = ?", id, model.CampaignStatusSending).
		Updates(map[string]interface{}{
			"status":     model.CampaignStatusScheduled,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (c *Campaign) Complete(ctx context.Context, id int64, sentCount, failedCount int, totalCost float64, completedAt time.Time) error {
	result := GetTx(ctx, c.db).Model(&model.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.CampaignStatusCompleted,
			"sent_count":   sentCount,
			"failed_count": failedCount,
			"total_cost":   totalCost,
			"completed_at": completedAt,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrCampaignNotFound
	}

	return nil
}
