package model

import "time"

const (
	IndustryRestaurant = "restaurant"
	IndustrySalon      = "salon"
	IndustryWorkshop   = "workshop"
	IndustryB2B        = "b2b"
	IndustryOther      = "other"
)

type Organization struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Name               string    `gorm:"column:name"`
	Slug               string    `gorm:"column:slug;uniqueIndex"`
	Industry           string    `gorm:"column:industry"`
	Plan               string    `gorm:"column:plan"`
	SMSCredits         int       `gorm:"column:sms_credits"`
	SenderName         string    `gorm:"column:sender_name"`
	SubscriptionStatus string    `gorm:"column:subscription_status"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

func (Organization) TableName() string { return "organizations" }
