package mocks

import (
	"context"

	"github.com/meddela/dispatch/internal/model"
	"github.com/stretchr/testify/mock"
)

type ContactRepository struct {
	mock.Mock
}

func (m *ContactRepository) GetByID(ctx context.Context, organizationID, id int64) (*model.Contact, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contact), args.Error(1)
}

func (m *ContactRepository) GetByIDs(ctx context.Context, organizationID int64, ids []int64) ([]model.Contact, error) {
	args := m.Called(ctx, organizationID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *ContactRepository) FindByTags(ctx context.Context, organizationID int64, tags []string) ([]model.Contact, error) {
	args := m.Called(ctx, organizationID, tags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contact), args.Error(1)
}

func (m *ContactRepository) IncrementSent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
