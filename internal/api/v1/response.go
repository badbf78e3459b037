package v1

import "github.com/meddela/dispatch/internal/service"

type SendSMSResponse struct {
	Success  bool    `json:"success"`
	SMSID    int64   `json:"smsId"`
	Cost     float64 `json:"cost"`
	Segments int     `json:"segments"`
}

type ProcessCampaignsResponse struct {
	Processed int                      `json:"processed"`
	Campaigns []service.CampaignResult `json:"campaigns"`
}

type WebhookResponse struct {
	Received bool   `json:"received"`
	Error    string `json:"error,omitempty"`
}

type WebhookInfoResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

type BalanceResponse struct {
	Balance  float64 `json:"balance"`
	Currency string  `json:"currency"`
}

type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}

type MessageResponse struct {
	ID          int64   `json:"id"`
	To          string  `json:"to"`
	Body        string  `json:"body"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Cost        float64 `json:"cost"`
	SentAt      string  `json:"sent_at,omitempty"`
	DeliveredAt string  `json:"delivered_at,omitempty"`
}
