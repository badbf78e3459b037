package mocks

import (
	"context"
	"time"

	"github.com/meddela/dispatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MessageRepository) GetByGatewayID(ctx context.Context, gatewayMsgID string) (*model.Message, error) {
	args := m.Called(ctx, gatewayMsgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Message), args.Error(1)
}

func (m *MessageRepository) UpdateDeliveryStatus(ctx context.Context, id int64, status model.MessageStatus, deliveredAt *time.Time) error {
	args := m.Called(ctx, id, status, deliveredAt)
	return args.Error(0)
}

func (m *MessageRepository) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]model.Message, error) {
	args := m.Called(ctx, organizationID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Message), args.Error(1)
}

func (m *MessageRepository) CountByOrganization(ctx context.Context, organizationID int64) (int64, error) {
	args := m.Called(ctx, organizationID)
	return args.Get(0).(int64), args.Error(1)
}
