package model

import "time"

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
)

type Campaign struct {
	ID               int64          `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	OrganizationID   int64          `gorm:"column:organization_id;index"`
	Name             string         `gorm:"column:name"`
	MessageTemplate  string         `gorm:"column:message_template"`
	TargetContactIDs Int64List      `gorm:"column:target_contact_ids;type:json"`
	TargetTags       StringList     `gorm:"column:target_tags;type:json"`
	ScheduledFor     *time.Time     `gorm:"column:scheduled_for;index"`
	Status           CampaignStatus `gorm:"column:status;index"`
	SentCount        int            `gorm:"column:sent_count"`
	FailedCount      int            `gorm:"column:failed_count"`
	TotalCost        float64        `gorm:"column:total_cost"`
	CompletedAt      *time.Time     `gorm:"column:completed_at"`
	CreatedAt        time.Time      `gorm:"column:created_at"`
	UpdatedAt        time.Time      `gorm:"column:updated_at"`
}

func (Campaign) TableName() string { return "campaigns" }
