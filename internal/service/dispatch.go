package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meddela/dispatch/internal/constants"
	"github.com/meddela/dispatch/internal/metrics"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/repository"
	"github.com/meddela/dispatch/pkg/elks"
	"go.uber.org/zap"
)

type DispatchService interface {
	SendPersonalizedSMS(ctx context.Context, cmd DispatchCommand) (DispatchResult, error)
}

type dispatch struct {
	contactRepo  repository.ContactRepository
	orgRepo      repository.OrganizationRepository
	messageRepo  repository.MessageRepository
	templateRepo repository.TemplateRepository
	txManager    repository.TxManager
	gateway      elks.Client
	defaultFrom  string
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewDispatchService(contactRepo repository.ContactRepository, orgRepo repository.OrganizationRepository,
	messageRepo repository.MessageRepository, templateRepo repository.TemplateRepository,
	txManager repository.TxManager, gateway elks.Client, defaultFrom string,
	m *metrics.Metrics, logger *zap.Logger) DispatchService {
	return &dispatch{
		contactRepo:  contactRepo,
		orgRepo:      orgRepo,
		messageRepo:  messageRepo,
		templateRepo: templateRepo,
		txManager:    txManager,
		gateway:      gateway,
		defaultFrom:  defaultFrom,
		metrics:      m,
		logger:       logger,
	}
}

// SendPersonalizedSMS runs the dispatch gates in strict order: content,
// consent, organization, fast credit check, placeholder resolution,
// segmentation, exact credit check, gateway call, persistence, counter
// updates. Failing any gate aborts before the next side effect.
func (d *dispatch) SendPersonalizedSMS(ctx context.Context, cmd DispatchCommand) (DispatchResult, error) {
	if strings.TrimSpace(cmd.Message) == "" {
		d.recordFailed(constants.ErrCodeContent)
		return DispatchResult{}, NewServiceError(constants.ErrCodeContent, errors.New("message body is empty"))
	}

	contact, err := d.loadContact(ctx, cmd)
	if err != nil {
		var serviceErr Error
		if errors.As(err, &serviceErr) {
			d.recordFailed(serviceErr.Code)
		}
		return DispatchResult{}, err
	}

	org, err := d.loadOrganization(ctx, cmd)
	if err != nil {
		var serviceErr Error
		if errors.As(err, &serviceErr) {
			d.recordFailed(serviceErr.Code)
		}
		return DispatchResult{}, err
	}

	if org.SMSCredits <= 0 {
		d.logger.Warn("Send refused, no credits left",
			zap.Int64("organizationID", org.ID))
		d.recordFailed(constants.ErrCodeCredit)
		return DispatchResult{}, NewServiceError(constants.ErrCodeCredit, errors.New("organization has no SMS credits"))
	}

	resolution := ResolvePlaceholders(cmd.Message, PlaceholderContext{Contact: contact, Organization: org})
	if len(resolution.Unmatched) > 0 {
		d.logger.Warn("Send refused, unresolved placeholders",
			zap.Int64("organizationID", org.ID),
			zap.Strings("tokens", resolution.Unmatched))
		d.recordFailed(constants.ErrCodePlaceholder)
		return DispatchResult{}, NewPlaceholderError(resolution.Unmatched)
	}

	segments := CalculateSegments(resolution.Rendered)
	if segments <= 0 {
		d.recordFailed(constants.ErrCodeContent)
		return DispatchResult{}, NewServiceError(constants.ErrCodeContent, errors.New("rendered message is empty"))
	}

	// The first credit check only confirms a non-zero balance; a
	// multi-segment message needs the exact count.
	if org.SMSCredits < segments {
		d.logger.Warn("Send refused, not enough credits for message size",
			zap.Int64("organizationID", org.ID),
			zap.Int("credits", org.SMSCredits),
			zap.Int("segments", segments))
		d.recordFailed(constants.ErrCodeCredit)
		return DispatchResult{}, NewServiceError(constants.ErrCodeCredit, errors.New("insufficient credits for message size"))
	}

	to := cmd.ToPhone
	if to == "" {
		to = contact.Phone
	}

	from := org.SenderName
	if from == "" {
		from = d.defaultFrom
	}

	response, sendErr := d.gateway.Send(ctx, elks.SendRequest{To: to, From: from, Message: resolution.Rendered})
	if sendErr != nil {
		d.logger.Error("Gateway rejected send",
			zap.Int64("organizationID", org.ID),
			zap.Int64("contactID", contact.ID),
			zap.String("code", sendErr.Code),
			zap.String("reason", sendErr.Message))

		if sendErr.Code == elks.ErrorCodeConfig {
			d.recordFailed(constants.ErrCodeConfig)
			return DispatchResult{}, NewServiceError(constants.ErrCodeConfig, sendErr)
		}

		d.recordFailed(constants.ErrCodeProvider)
		return DispatchResult{}, NewServiceError(constants.ErrCodeProvider, sendErr)
	}

	sentAt := time.Now()
	message := model.Message{
		OrganizationID: org.ID,
		ContactID:      &contact.ID,
		UserID:         cmd.UserID,
		ToPhone:        to,
		Body:           resolution.Rendered,
		SenderName:     from,
		Type:           cmd.Type,
		TemplateID:     cmd.TemplateID,
		Status:         model.MessageStatusSent,
		GatewayMsgID:   &response.ID,
		ClientRef:      uuid.NewString(),
		Segments:       segments,
		Cost:           response.Cost,
		Direction:      model.DirectionOutbound,
		SentAt:         &sentAt,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// Past this point the gateway has accepted the message; local
	// failures leave a sent-but-unrecorded SMS that the reconciliation
	// runbook has to pick up from the gateway history.
	if err := d.messageRepo.Create(ctx, &message); err != nil {
		d.logger.Error("CRITICAL: SMS sent but message row not persisted, reconciliation required",
			zap.Int64("organizationID", org.ID),
			zap.String("gatewayMsgID", response.ID),
			zap.Error(err))
		d.recordFailed(constants.ErrCodeInternalError)
		return DispatchResult{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	if cmd.TemplateID != nil {
		if err := d.templateRepo.IncrementUsage(ctx, *cmd.TemplateID); err != nil {
			d.logger.Warn("Failed to bump template usage count",
				zap.Int64("templateID", *cmd.TemplateID),
				zap.Error(err))
		}
	}

	// Counter and balance move together; the message row stays outside
	// the transaction so a sent SMS always leaves a trace.
	err = d.txManager.WithTx(ctx, func(txCtx context.Context) error {
		if err := d.contactRepo.IncrementSent(txCtx, contact.ID); err != nil {
			return err
		}
		return d.orgRepo.DeductCredits(txCtx, org.ID, segments)
	})
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientCredits) {
			// Another sender drained the balance between our check and
			// the deduct; the guard kept it from going negative.
			d.logger.Error("CRITICAL: SMS sent but credits exhausted concurrently, reconciliation required",
				zap.Int64("organizationID", org.ID),
				zap.String("gatewayMsgID", response.ID),
				zap.Int("segments", segments))
			d.recordFailed(constants.ErrCodeCredit)
			return DispatchResult{}, NewServiceError(constants.ErrCodeCredit, err)
		}

		d.logger.Error("CRITICAL: SMS sent but bookkeeping not recorded, reconciliation required",
			zap.Int64("organizationID", org.ID),
			zap.String("gatewayMsgID", response.ID),
			zap.Error(err))
		d.recordFailed(constants.ErrCodeInternalError)
		return DispatchResult{}, NewServiceError(constants.ErrCodeInternalError, err)
	}

	// Keep a batch caller's pre-fetched balance in sync.
	org.SMSCredits -= segments

	if d.metrics != nil {
		d.metrics.RecordSent(string(cmd.Type), segments)
	}

	d.logger.Info("SMS dispatched",
		zap.Int64("organizationID", org.ID),
		zap.Int64("contactID", contact.ID),
		zap.Int64("messageID", message.ID),
		zap.String("gatewayMsgID", response.ID),
		zap.Int("segments", segments),
		zap.Float64("cost", response.Cost))

	return DispatchResult{
		MessageID: message.ID,
		GatewayID: response.ID,
		Cost:      response.Cost,
		Segments:  segments,
		Rendered:  resolution.Rendered,
	}, nil
}

// loadContact re-reads consent from the store unless the caller supplied
// the row; consent can be revoked between enqueue and send.
func (d *dispatch) loadContact(ctx context.Context, cmd DispatchCommand) (*model.Contact, error) {
	contact := cmd.Contact

	if contact == nil {
		fresh, err := d.contactRepo.GetByID(ctx, cmd.OrganizationID, cmd.ContactID)
		if err != nil {
			if errors.Is(err, repository.ErrContactNotFound) {
				return nil, NewServiceError(constants.ErrCodeConsent, err)
			}
			return nil, NewServiceError(constants.ErrCodeInternalError, err)
		}
		contact = fresh
	}

	if !contact.SMSConsent {
		return nil, NewServiceError(constants.ErrCodeConsent, errors.New("contact has not consented to SMS"))
	}

	if cmd.Type == model.MessageTypeMarketing && !contact.MarketingConsent {
		return nil, NewServiceError(constants.ErrCodeConsent, errors.New("contact has not consented to marketing SMS"))
	}

	return contact, nil
}

func (d *dispatch) loadOrganization(ctx context.Context, cmd DispatchCommand) (*model.Organization, error) {
	if cmd.Organization != nil {
		return cmd.Organization, nil
	}

	org, err := d.orgRepo.GetByID(ctx, cmd.OrganizationID)
	if err != nil {
		return nil, NewServiceError(constants.ErrCodeInternalError, err)
	}

	return org, nil
}

func (d *dispatch) recordFailed(code string) {
	if d.metrics != nil {
		d.metrics.RecordFailed(code)
	}
}
