package model

import "time"

type MessageStatus string

const (
	MessageStatusPending   MessageStatus = "pending"
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusFailed    MessageStatus = "failed"
)

type MessageType string

const (
	MessageTypeReminder     MessageType = "reminder"
	MessageTypeConfirmation MessageType = "confirmation"
	MessageTypeMarketing    MessageType = "marketing"
	MessageTypeManual       MessageType = "manual"
)

type MessageDirection string

const (
	DirectionOutbound MessageDirection = "outbound"
	DirectionInbound  MessageDirection = "inbound"
)

type Message struct {
	ID             int64            `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	OrganizationID int64            `gorm:"column:organization_id;index"`
	ContactID      *int64           `gorm:"column:contact_id"`
	UserID         *int64           `gorm:"column:user_id"`
	ToPhone        string           `gorm:"column:to_phone"`
	Body           string           `gorm:"column:body"`
	SenderName     string           `gorm:"column:sender_name"`
	Type           MessageType      `gorm:"column:type"`
	TemplateID     *int64           `gorm:"column:template_id"`
	Status         MessageStatus    `gorm:"column:status"`
	GatewayMsgID   *string          `gorm:"column:gateway_msg_id;index"`
	ClientRef      string           `gorm:"column:client_ref"`
	Segments       int              `gorm:"column:segments"`
	Cost           float64          `gorm:"column:cost"`
	Direction      MessageDirection `gorm:"column:direction"`
	SentAt         *time.Time       `gorm:"column:sent_at"`
	DeliveredAt    *time.Time       `gorm:"column:delivered_at"`
	CreatedAt      time.Time        `gorm:"column:created_at"`
	UpdatedAt      time.Time        `gorm:"column:updated_at"`
}

func (Message) TableName() string { return "sms_messages" }
