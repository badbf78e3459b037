package service

import "github.com/meddela/dispatch/internal/model"

type DispatchCommand struct {
	OrganizationID int64
	UserID         *int64
	ContactID      int64
	Message        string
	TemplateID     *int64
	Type           model.MessageType

	// ToPhone overrides the contact's stored number when set. Consent
	// is still checked against the contact.
	ToPhone string

	// Contact and Organization are optional pre-fetched rows for batch
	// callers that already hold them. When Organization is supplied its
	// in-memory credit balance is decremented after a successful send so
	// the caller observes the new balance without re-querying.
	Contact      *model.Contact
	Organization *model.Organization
}

type DispatchResult struct {
	MessageID int64   `json:"message_id"`
	GatewayID string  `json:"gateway_id"`
	Cost      float64 `json:"cost"`
	Segments  int     `json:"segments"`
	Rendered  string  `json:"rendered"`
}

type DeliveryReportCommand struct {
	GatewayMsgID string
	Status       string
	Delivered    string
	Direction    string
	From         string
	To           string
}

type DeliveryOutcome struct {
	Matched   bool
	NewStatus model.MessageStatus
	Updated   bool
}

type CampaignResult struct {
	CampaignID int64   `json:"campaign_id"`
	Sent       int     `json:"sent"`
	Failed     int     `json:"failed"`
	Cost       float64 `json:"cost"`
}

type BatchSummary struct {
	Processed int              `json:"processed"`
	Campaigns []CampaignResult `json:"campaigns"`
}
