package service

import (
	"context"
	"errors"
	"time"

	"github.com/meddela/dispatch/internal/metrics"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/repository"
	"go.uber.org/zap"
)

type DeliveryService interface {
	HandleDeliveryReport(ctx context.Context, cmd DeliveryReportCommand) (DeliveryOutcome, error)
}

type delivery struct {
	messageRepo repository.MessageRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewDeliveryService(messageRepo repository.MessageRepository, m *metrics.Metrics, logger *zap.Logger) DeliveryService {
	return &delivery{messageRepo: messageRepo, metrics: m, logger: logger}
}

// HandleDeliveryReport transitions a previously sent message based on
// the gateway's asynchronous callback. An unknown gateway id is not an
// error: the caller must still answer 200 so the gateway stops retrying.
func (d *delivery) HandleDeliveryReport(ctx context.Context, cmd DeliveryReportCommand) (DeliveryOutcome, error) {
	if d.metrics != nil {
		d.metrics.RecordDeliveryReport(cmd.Status)
	}

	message, err := d.messageRepo.GetByGatewayID(ctx, cmd.GatewayMsgID)
	if err != nil {
		if errors.Is(err, repository.ErrMessageNotFound) {
			d.logger.Info("Delivery report for unknown message",
				zap.String("gatewayMsgID", cmd.GatewayMsgID),
				zap.String("status", cmd.Status))
			return DeliveryOutcome{Matched: false}, nil
		}

		d.logger.Error("Failed to look up message for delivery report",
			zap.String("gatewayMsgID", cmd.GatewayMsgID),
			zap.Error(err))
		return DeliveryOutcome{}, ErrDatabase
	}

	status, deliveredAt := mapGatewayStatus(cmd)
	if status == model.MessageStatusSent {
		// Intermediate statuses leave the row as sent.
		return DeliveryOutcome{Matched: true, NewStatus: message.Status}, nil
	}

	if err := d.messageRepo.UpdateDeliveryStatus(ctx, message.ID, status, deliveredAt); err != nil {
		d.logger.Error("Failed to update delivery status",
			zap.Int64("messageID", message.ID),
			zap.String("gatewayMsgID", cmd.GatewayMsgID),
			zap.String("status", string(status)),
			zap.Error(err))
		return DeliveryOutcome{}, ErrDatabase
	}

	d.logger.Info("Message delivery status updated",
		zap.Int64("messageID", message.ID),
		zap.String("gatewayMsgID", cmd.GatewayMsgID),
		zap.String("status", string(status)))

	return DeliveryOutcome{Matched: true, NewStatus: status, Updated: true}, nil
}

func mapGatewayStatus(cmd DeliveryReportCommand) (model.MessageStatus, *time.Time) {
	if cmd.Status == "delivered" || cmd.Delivered == "yes" {
		now := time.Now()
		return model.MessageStatusDelivered, &now
	}

	if cmd.Status == "failed" {
		return model.MessageStatusFailed, nil
	}

	return model.MessageStatusSent, nil
}
