package model

import "time"

type Template struct {
	ID             int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	OrganizationID int64     `gorm:"column:organization_id;index"`
	Name           string    `gorm:"column:name"`
	Body           string    `gorm:"column:body"`
	UsageCount     int       `gorm:"column:usage_count"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (Template) TableName() string { return "templates" }
