package repository

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/meddela/dispatch/internal/model"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("MESSAGE_NOT_FOUND")
var ErrMessageDuplicate = errors.New("MESSAGE_DUPLICATE")
var ErrNoRowsAffected = errors.New("NO_ROWS_AFFECTED")

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	GetByGatewayID(ctx context.Context, gatewayMsgID string) (*model.Message, error)
	UpdateDeliveryStatus(ctx context.Context, id int64, status model.MessageStatus, deliveredAt *time.Time) error
	ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]model.Message, error)
	CountByOrganization(ctx context.Context, organizationID int64) (int64, error)
}

type Message struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &Message{db: db}
}

func (m *Message) Create(ctx context.Context, message *model.Message) error {
	err := GetTx(ctx, m.db).Create(message).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrMessageDuplicate
	}

	return err
}

func (m *Message) GetByGatewayID(ctx context.Context, gatewayMsgID string) (*model.Message, error) {
	var message model.Message

	err := GetTx(ctx, m.db).Where("gateway_msg_id = ?", gatewayMsgID).First(&message).Error
	if err == nil {
		return &message, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}

	return nil, err
}

func (m *Message) UpdateDeliveryStatus(ctx context.Context, id int64, status model.MessageStatus, deliveredAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if deliveredAt != nil {
		updates["delivered_at"] = deliveredAt
	}

	result := GetTx(ctx, m.db).Model(&model.Message{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (m *Message) ListByOrganization(ctx context.Context, organizationID int64, limit, offset int) ([]model.Message, error) {
	var messages []model.Message

	err := GetTx(ctx, m.db).
		Where("organization_id = ?", organizationID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	return messages, nil
}

func (m *Message) CountByOrganization(ctx context.Context, organizationID int64) (int64, error) {
	var count int64

	err := GetTx(ctx, m.db).Model(&model.Message{}).
		Where("organization_id = ?", organizationID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}
