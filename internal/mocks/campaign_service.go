package mocks

import (
	"context"

	"github.com/meddela/dispatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type CampaignService struct {
	mock.Mock
}

func (m *CampaignService) ProcessDueCampaigns(ctx context.Context) (service.BatchSummary, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.BatchSummary), args.Error(1)
}
