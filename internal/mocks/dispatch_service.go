package mocks

import (
	"context"

	"github.com/meddela/dispatch/internal/service"
	"github.com/stretchr/testify/mock"
)

type DispatchService struct {
	mock.Mock
}

func (m *DispatchService) SendPersonalizedSMS(ctx context.Context, cmd service.DispatchCommand) (service.DispatchResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.DispatchResult), args.Error(1)
}
