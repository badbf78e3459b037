package model

import (
	"strings"
	"time"
)

type Contact struct {
	ID               int64      `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	OrganizationID   int64      `gorm:"column:organization_id;index"`
	Phone            string     `gorm:"column:phone"`
	Name             string     `gorm:"column:name"`
	Email            string     `gorm:"column:email"`
	Tags             StringList `gorm:"column:tags;type:json"`
	SMSConsent       bool       `gorm:"column:sms_consent"`
	MarketingConsent bool       `gorm:"column:marketing_consent"`
	TotalSMSSent     int        `gorm:"column:total_sms_sent"`
	DeletedAt        *time.Time `gorm:"column:deleted_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

func (Contact) TableName() string { return "contacts" }

// FirstName is everything before the first space in the contact's
// full name; LastName is the rest. A single-word name has an empty
// last name.
func (c *Contact) FirstName() string {
	name := strings.TrimSpace(c.Name)
	if idx := strings.IndexAny(name, " \t"); idx >= 0 {
		return name[:idx]
	}
	return name
}

func (c *Contact) LastName() string {
	name := strings.TrimSpace(c.Name)
	if idx := strings.IndexAny(name, " \t"); idx >= 0 {
		return strings.TrimSpace(name[idx+1:])
	}
	return ""
}
