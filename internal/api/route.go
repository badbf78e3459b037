package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	v1 "github.com/meddela/dispatch/internal/api/v1"
	"github.com/meddela/dispatch/internal/api/v1/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *v1.Handler, cronSecret string, logger *zap.Logger) {
	app.Get("/ping", handler.Pong)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/api/sms/send", handler.SendSMS)
	app.Get("/api/sms/messages", handler.ListMessages)
	app.Get("/api/sms/balance", handler.Balance)

	app.Post("/api/campaigns/process", middleware.CronAuth(cronSecret, logger), handler.ProcessCampaigns)

	app.Post("/api/webhooks/46elks", handler.DeliveryWebhook)
	app.Get("/api/webhooks/46elks", handler.WebhookInfo)
}
