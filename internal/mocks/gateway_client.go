package mocks

import (
	"context"

	"github.com/meddela/dispatch/pkg/elks"
	"github.com/stretchr/testify/mock"
)

type GatewayClient struct {
	mock.Mock
}

func (m *GatewayClient) Send(ctx context.Context, request elks.SendRequest) (elks.SendResponse, *elks.SendError) {
	args := m.Called(ctx, request)
	if args.Get(1) == nil {
		return args.Get(0).(elks.SendResponse), nil
	}
	return args.Get(0).(elks.SendResponse), args.Get(1).(*elks.SendError)
}

func (m *GatewayClient) Balance(ctx context.Context) (elks.BalanceResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(elks.BalanceResponse), args.Error(1)
}

func (m *GatewayClient) History(ctx context.Context, limit int) (elks.HistoryResponse, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).(elks.HistoryResponse), args.Error(1)
}
