package main

import (
	"context"
	"time"

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

// worker-campaign drives the same campaign batch processor as the API's
// cron endpoint, for deployments without an external cron caller.
func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			metrics.NewMetrics,
			NewConnectionDB,
			NewGatewayClient,

			repository.NewOrganizationRepository,
			repository.NewContactRepository,
			repository.NewMessageRepository,
			repository.NewCampaignRepository,
			repository.NewTemplateRepository,
			repository.NewTransactionManager,

			NewDispatchService,
			NewCampaignService,
		),
		fx.Invoke(runCampaignWorker),
	).Run()
}

func runCampaignWorker(cfg *config.Config, campaigns service.CampaignService, logger *zap.Logger, lc fx.Lifecycle) {
	interval, err := time.ParseDuration(cfg.Campaign.Interval)
	if err != nil || interval <= 0 {
		interval = time.Minute
	}

	appCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				logger.Info("Campaign worker started", zap.Duration("interval", interval))

				for {
					select {
					case <-appCtx.Done():
						return
					case <-ticker.C:
						summary, err := campaigns.ProcessDueCampaigns(appCtx)
						if err != nil {
							logger.Error("Campaign batch failed", zap.Error(err))
							continue
						}

						if summary.Processed > 0 {
							logger.Info("Campaign batch processed",
								zap.Int("campaigns", summary.Processed))
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping campaign worker")
			cancel()
			return nil
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	return mysql.NewConnection(context.Background(), cfg.Database, logger)
}

func NewGatewayClient(cfg *config.Config) elks.Client {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return elks.NewClient(cfg.Gateway, client)
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
