package mocks

import (
	"context"

	"github.com/meddela/dispatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type DeliveryService struct {
	mock.Mock
}

func (m *DeliveryService) HandleDeliveryReport(ctx context.Context, cmd service.DeliveryReportCommand) (service.DeliveryOutcome, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.DeliveryOutcome), args.Error(1)
}
