package service

import (
	"context"
	"time"

	"github.com/meddela/dispatch/internal/metrics"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/repository"
	"go.uber.org/zap"
)

const DefaultCampaignBatchSize = 10

type CampaignService interface {
	ProcessDueCampaigns(ctx context.Context) (BatchSummary, error)
}

type campaign struct {
	campaignRepo repository.CampaignRepository
	contactRepo  repository.ContactRepository
	orgRepo      repository.OrganizationRepository
	dispatch     DispatchService
	batchSize    int
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewCampaignService(campaignRepo repository.CampaignRepository, contactRepo repository.ContactRepository,
	orgRepo repository.OrganizationRepository, dispatch DispatchService, batchSize int,
	m *metrics.Metrics, logger *zap.Logger) CampaignService {
	if batchSize <= 0 {
		batchSize = DefaultCampaignBatchSize
	}
	return &campaign{
		campaignRepo: campaignRepo,
		contactRepo:  contactRepo,
		orgRepo:      orgRepo,
		dispatch:     dispatch,
		batchSize:    batchSize,
		metrics:      m,
		logger:       logger,
	}
}

// ProcessDueCampaigns drains up to batchSize due campaigns. Recipients
// are attempted strictly in target order; a credit-exhaustion error
// fails every remaining recipient without touching the gateway, any
// other per-recipient error is local. A campaign that starts sending
// ends completed; one whose target set cannot be resolved goes back to
// scheduled for the next run.
func (c *campaign) ProcessDueCampaigns(ctx context.Context) (BatchSummary, error) {
	due, err := c.campaignRepo.FindDue(ctx, time.Now(), c.batchSize)
	if err != nil {
		c.logger.Error("Failed to query due campaigns", zap.Error(err))
		return BatchSummary{}, ErrDatabase
	}

	summary := BatchSummary{Campaigns: make([]CampaignResult, 0, len(due))}

	for i := range due {
		result, processed := c.processCampaign(ctx, &due[i])
		if !processed {
			continue
		}

		summary.Campaigns = append(summary.Campaigns, result)
		summary.Processed++

		if c.metrics != nil {
			c.metrics.RecordCampaignCompleted(result.Sent, result.Failed)
		}
	}

	return summary, nil
}

// processCampaign drives one due campaign to completed. The second
// return is false when the campaign was skipped: another worker claimed
// it, or its target set could not be resolved. A skipped campaign keeps
// (or regains) scheduled status so the next invocation retries it, and
// is left out of the batch summary.
func (c *campaign) processCampaign(ctx context.Context, cam *model.Campaign) (CampaignResult, bool) {
	result := CampaignResult{CampaignID: cam.ID}

	if err := c.campaignRepo.MarkSending(ctx, cam.ID); err != nil {
		c.logger.Warn("Campaign not transitioned to sending, skipping",
			zap.Int64("campaignID", cam.ID),
			zap.Error(err))
		return result, false
	}

	targetIDs, contacts, err := c.resolveTargets(ctx, cam)
	if err != nil {
		// A transient fetch failure must not finish the campaign with
		// zero counts; put it back for the next run.
		c.logger.Error("Failed to resolve campaign targets, rescheduling",
			zap.Int64("campaignID", cam.ID),
			zap.Error(err))

		if err := c.campaignRepo.Reschedule(ctx, cam.ID); err != nil {
			c.logger.Error("Failed to reschedule campaign",
				zap.Int64("campaignID", cam.ID),
				zap.Error(err))
		}
		return result, false
	}

	if len(targetIDs) == 0 {
		// No recipients is trivially done, not an error.
		c.complete(ctx, cam.ID, &result)
		return result, true
	}

	org, err := c.orgRepo.GetByID(ctx, cam.OrganizationID)
	if err != nil {
		c.logger.Error("Failed to load campaign organization",
			zap.Int64("campaignID", cam.ID),
			zap.Int64("organizationID", cam.OrganizationID),
			zap.Error(err))
		result.Failed = len(targetIDs)
		c.complete(ctx, cam.ID, &result)
		return result, true
	}

	exhausted := false
	for _, contactID := range targetIDs {
		if exhausted {
			result.Failed++
			continue
		}

		contact, ok := contacts[contactID]
		if !ok {
			// Deleted or detargeted after scheduling.
			result.Failed++
			continue
		}

		res, err := c.dispatch.SendPersonalizedSMS(ctx, DispatchCommand{
			OrganizationID: cam.OrganizationID,
			ContactID:      contactID,
			Message:        cam.MessageTemplate,
			Type:           model.MessageTypeMarketing,
			Contact:        contact,
			Organization:   org,
		})
		if err != nil {
			result.Failed++

			if IsCreditError(err) {
				c.logger.Warn("Campaign credits exhausted, failing remaining recipients",
					zap.Int64("campaignID", cam.ID),
					zap.Int64("organizationID", cam.OrganizationID),
					zap.Int("sentSoFar", result.Sent))
				exhausted = true
				continue
			}

			c.logger.Debug("Campaign recipient failed",
				zap.Int64("campaignID", cam.ID),
				zap.Int64("contactID", contactID),
				zap.Error(err))
			continue
		}

		result.Sent++
		result.Cost += res.Cost
	}

	c.complete(ctx, cam.ID, &result)

	c.logger.Info("Campaign completed",
		zap.Int64("campaignID", cam.ID),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Float64("cost", result.Cost))

	return result, true
}

// resolveTargets returns the ordered recipient ids and a lookup of their
// rows, fetched once per campaign. Explicit id lists win over tag
// filters. A fetch error means the target set is unknown and the caller
// must not treat the campaign as processed.
func (c *campaign) resolveTargets(ctx context.Context, cam *model.Campaign) ([]int64, map[int64]*model.Contact, error) {
	lookup := make(map[int64]*model.Contact)

	if len(cam.TargetContactIDs) > 0 {
		contacts, err := c.contactRepo.GetByIDs(ctx, cam.OrganizationID, cam.TargetContactIDs)
		if err != nil {
			return nil, nil, err
		}

		for i := range contacts {
			lookup[contacts[i].ID] = &contacts[i]
		}
		return cam.TargetContactIDs, lookup, nil
	}

	if len(cam.TargetTags) > 0 {
		contacts, err := c.contactRepo.FindByTags(ctx, cam.OrganizationID, cam.TargetTags)
		if err != nil {
			return nil, nil, err
		}

		ids := make([]int64, 0, len(contacts))
		for i := range contacts {
			ids = append(ids, contacts[i].ID)
			lookup[contacts[i].ID] = &contacts[i]
		}
		return ids, lookup, nil
	}

	return nil, lookup, nil
}

func (c *campaign) complete(ctx context.Context, campaignID int64, result *CampaignResult) {
	if err := c.campaignRepo.Complete(ctx, campaignID, result.Sent, result.Failed, result.Cost, time.Now()); err != nil {
		c.logger.Error("Failed to mark campaign completed",
			zap.Int64("campaignID", campaignID),
			zap.Error(err))
	}
}
