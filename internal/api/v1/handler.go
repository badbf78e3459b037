package v1

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/meddela/dispatch/internal/api/validator"
	"github.com/meddela/dispatch/internal/constants"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/repository"
	"github.com/meddela/dispatch/internal/service"
	"github.com/meddela/dispatch/pkg/elks"
	"go.uber.org/zap"
)

const organizationHeader = "X-Organization-ID"

type Handler struct {
	logger    *zap.Logger
	dispatch  service.DispatchService
	campaigns service.CampaignService
	delivery  service.DeliveryService
	messages  repository.MessageRepository
	gateway   elks.Client
	validator *validator.XValidator
}

func NewHandler(logger *zap.Logger, dispatch service.DispatchService, campaigns service.CampaignService,
	delivery service.DeliveryService, messages repository.MessageRepository, gateway elks.Client,
	v *validator.XValidator) *Handler {
	return &Handler{
		logger:    logger,
		dispatch:  dispatch,
		campaigns: campaigns,
		delivery:  delivery,
		messages:  messages,
		gateway:   gateway,
		validator: v,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// SendSMS is the manual-send endpoint. The fronting auth proxy resolves
// the session and forwards the tenant in X-Organization-ID.
func (h *Handler) SendSMS(c *fiber.Ctx) error {
	orgID, err := organizationID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"code":  constants.ErrCodeUnauthorized,
			"error": constants.GetErrorMessage(constants.ErrCodeUnauthorized),
		})
	}

	var request SendSMSRequest
	if err := c.BodyParser(&request); err != nil {
		h.logger.Warn("Failed to parse send request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  constants.ErrCodeInvalidRequestBody,
			"error": constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
		})
	}

	if errs := h.validator.Validate(request); len(errs) > 0 {
		h.logger.Warn("Send request failed validation",
			zap.String("field", errs[0].FailedField),
			zap.String("tag", errs[0].Tag))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"code":  constants.ErrCodeInvalidRequestBody,
			"error": "invalid field: " + errs[0].FailedField,
		})
	}

	result, err := h.dispatch.SendPersonalizedSMS(c.UserContext(), service.DispatchCommand{
		OrganizationID: orgID,
		ContactID:      request.ContactID,
		Message:        request.Message,
		TemplateID:     request.TemplateID,
		Type:           model.MessageTypeManual,
		ToPhone:        request.Phone,
	})
	if err != nil {
		return err
	}

	return c.JSON(SendSMSResponse{
		Success:  true,
		SMSID:    result.MessageID,
		Cost:     result.Cost,
		Segments: result.Segments,
	})
}

// ProcessCampaigns is the cron-triggered batch entry point; auth is the
// CronAuth middleware's job.
func (h *Handler) ProcessCampaigns(c *fiber.Ctx) error {
	summary, err := h.campaigns.ProcessDueCampaigns(c.UserContext())
	if err != nil {
		h.logger.Error("Campaign batch failed", zap.Error(err))
		return service.NewServiceError(constants.ErrCodeInternalError, err)
	}

	h.logger.Info("Campaign batch processed", zap.Int("campaigns", summary.Processed))

	return c.JSON(ProcessCampaignsResponse{
		Processed: summary.Processed,
		Campaigns: summary.Campaigns,
	})
}

// DeliveryWebhook receives the gateway's delivery callbacks. Apart from
// a missing id/status it always answers 200 so the gateway never
// retries into our own failures.
func (h *Handler) DeliveryWebhook(c *fiber.Ctx) error {
	cmd := service.DeliveryReportCommand{
		GatewayMsgID: c.FormValue("id"),
		Status:       c.FormValue("status"),
		Delivered:    c.FormValue("delivered"),
		Direction:    c.FormValue("direction"),
		From:         c.FormValue("from"),
		To:           c.FormValue("to"),
	}

	if cmd.GatewayMsgID == "" || cmd.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(WebhookResponse{
			Received: false,
			Error:    "missing id or status",
		})
	}

	h.logger.Debug("Delivery report received",
		zap.String("gatewayMsgID", cmd.GatewayMsgID),
		zap.String("status", cmd.Status),
		zap.String("direction", cmd.Direction))

	if _, err := h.delivery.HandleDeliveryReport(c.UserContext(), cmd); err != nil {
		h.logger.Error("Delivery report handling failed",
			zap.String("gatewayMsgID", cmd.GatewayMsgID),
			zap.Error(err))
		return c.JSON(WebhookResponse{Received: true, Error: err.Error()})
	}

	return c.JSON(WebhookResponse{Received: true})
}

func (h *Handler) WebhookInfo(c *fiber.Ctx) error {
	return c.JSON(WebhookInfoResponse{Service: "meddela-delivery-webhook", Status: "ok"})
}

func (h *Handler) Balance(c *fiber.Ctx) error {
	balance, err := h.gateway.Balance(c.UserContext())
	if err != nil {
		h.logger.Error("Failed to fetch gateway balance", zap.Error(err))
		return service.NewServiceError(constants.ErrCodeProvider, err)
	}

	return c.JSON(BalanceResponse{Balance: balance.Balance, Currency: balance.Currency})
}

func (h *Handler) ListMessages(c *fiber.Ctx) error {
	orgID, err := organizationID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"code":  constants.ErrCodeUnauthorized,
			"error": constants.GetErrorMessage(constants.ErrCodeUnauthorized),
		})
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	messages, err := h.messages.ListByOrganization(c.UserContext(), orgID, limit, offset)
	if err != nil {
		return service.NewServiceError(constants.ErrCodeInternalError, err)
	}

	total, err := h.messages.CountByOrganization(c.UserContext(), orgID)
	if err != nil {
		return service.NewServiceError(constants.ErrCodeInternalError, err)
	}

	response := ListMessagesResponse{Total: total, Messages: make([]MessageResponse, 0, len(messages))}
	for _, m := range messages {
		response.Messages = append(response.Messages, MessageResponse{
			ID:          m.ID,
			To:          m.ToPhone,
			Body:        m.Body,
			Type:        string(m.Type),
			Status:      string(m.Status),
			Cost:        m.Cost,
			SentAt:      formatTime(m.SentAt),
			DeliveredAt: formatTime(m.DeliveredAt),
		})
	}

	return c.JSON(response)
}

func organizationID(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Get(organizationHeader), 10, 64)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
