package mocks

import (
	"context"
	"time"

	"github.com/meddela/dispatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type CampaignRepository struct {
	mock.Mock
}

func (m *CampaignRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]model.Campaign, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *CampaignRepository) MarkSending(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CampaignRepository) Reschedule(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *CampaignRepository) Complete(ctx context.Context, id int64, sentCount, failedCount int, totalCost float64, completedAt time.Time) error {
	args := m.Called(ctx, id, sentCount, failedCount, totalCost, completedAt)
	return args.Error(0)
}
