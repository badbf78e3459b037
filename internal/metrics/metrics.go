package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Dispatch
	SMSSentTotal    *prometheus.CounterVec
	SMSFailedTotal  *prometheus.CounterVec
	SMSSegments     prometheus.Histogram
	CreditsDeducted prometheus.Counter

	// Campaign processing
	CampaignsProcessed prometheus.Counter
	CampaignRecipients *prometheus.CounterVec

	// Delivery webhook
	DeliveryReports *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		SMSSentTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meddela_sms_sent_total",
				Help: "SMS messages successfully handed to the gateway, by type",
			},
			[]string{"type"},
		),
		SMSFailedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meddela_sms_failed_total",
				Help: "Refused or failed dispatch attempts, by error code",
			},
			[]string{"code"},
		),
		SMSSegments: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "meddela_sms_segments",
				Help:    "Segment count of dispatched messages",
				Buckets: []float64{1, 2, 3, 4, 6, 10},
			},
		),
		CreditsDeducted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "meddela_credits_deducted_total",
				Help: "Organization SMS credits deducted",
			},
		),
		CampaignsProcessed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "meddela_campaigns_processed_total",
				Help: "Campaigns driven to completed",
			},
		),
		CampaignRecipients: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meddela_campaign_recipients_total",
				Help: "Per-recipient campaign outcomes",
			},
			[]string{"outcome"},
		),
		DeliveryReports: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "meddela_delivery_reports_total",
				Help: "Delivery webhook callbacks, by gateway status",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) RecordSent(messageType string, segments int) {
	m.SMSSentTotal.WithLabelValues(messageType).Inc()
	m.SMSSegments.Observe(float64(segments))
	m.CreditsDeducted.Add(float64(segments))
}

func (m *Metrics) RecordFailed(code string) {
	m.SMSFailedTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordCampaignCompleted(sent, failed int) {
	m.CampaignsProcessed.Inc()
	m.CampaignRecipients.WithLabelValues("sent").Add(float64(sent))
	m.CampaignRecipients.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) RecordDeliveryReport(status string) {
	m.DeliveryReports.WithLabelValues(status).Inc()
}
