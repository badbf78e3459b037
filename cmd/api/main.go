package main

import (
	"context"

	validate "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/meddela/dispatch/internal/api"
	v1 "github.com/meddela/dispatch/internal/api/v1"
	"github.com/meddela/dispatch/internal/api/v1/middleware"
	"github.com/meddela/dispatch/internal/api/validator"
	"github.com/meddela/dispatch/internal/config"
	"github.com/meddela/dispatch/internal/metrics"
	"github.com/meddela/dispatch/internal/repository"
	"github.com/meddela/dispatch/internal/service"
	"github.com/meddela/dispatch/pkg/elks"
	"github.com/meddela/dispatch/pkg/httpclient"
	"github.com/meddela/dispatch/pkg/mysql"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,
			NewFiberApp,
			NewConnectionDB,
			NewGatewayClient,
			NewValidator,

			repository.NewOrganizationRepository,
			repository.NewContactRepository,
			repository.NewMessageRepository,
			repository.NewCampaignRepository,
			repository.NewTemplateRepository,
			repository.NewTransactionManager,

			NewDispatchService,
			NewCampaignService,
			service.NewDeliveryService,

			v1.NewHandler,
		),
		fx.Invoke(startServer),
	).Run()
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) {
	api.SetupRoutes(app, handler, cfg.Cron.Secret, logger)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go app.Listen(cfg.API.Port)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})
}

func NewFiberApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return mysql.NewConnection(context.Background(), cfg.Database, logger)
}

func NewGatewayClient(cfg *config.Config) elks.Client {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return elks.NewClient(cfg.Gateway, client)
}

func NewValidator() *validator.XValidator {
	return validator.NewXValidator(validate.New())
}

func NewDispatchService(contactRepo repository.ContactRepository, orgRepo repository.OrganizationRepository,
	messageRepo repository.MessageRepository, templateRepo repository.TemplateRepository,
	txManager repository.TxManager, gateway elks.Client, cfg *config.Config,
	m *metrics.Metrics, logger *zap.Logger) service.DispatchService {
	return service.NewDispatchService(contactRepo, orgRepo, messageRepo, templateRepo,
		txManager, gateway, cfg.SMS.DefaultSender, m, logger)
}

func NewCampaignService(campaignRepo repository.CampaignRepository, contactRepo repository.ContactRepository,
	orgRepo repository.OrganizationRepository, dispatch service.DispatchService,
	cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) service.CampaignService {
	return service.NewCampaignService(campaignRepo, contactRepo, orgRepo, dispatch,
		cfg.Campaign.BatchSize, m, logger)
}
