package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meddela/dispatch/internal/constants"
	"github.com/meddela/dispatch/internal/mocks"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/repository"
	"github.com/meddela/dispatch/internal/service"
	"github.com/meddela/dispatch/pkg/elks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type dispatchFixture struct {
	contactRepo  *mocks.ContactRepository
	orgRepo      *mocks.OrganizationRepository
	messageRepo  *mocks.MessageRepository
	templateRepo *mocks.TemplateRepository
	txManager    *mocks.TxManager
	gateway      *mocks.GatewayClient
	service      service.DispatchService
}

func newDispatchFixture() *dispatchFixture {
	f := &dispatchFixture{
		contactRepo:  &mocks.ContactRepository{},
		orgRepo:      &mocks.OrganizationRepository{},
		messageRepo:  &mocks.MessageRepository{},
		templateRepo: &mocks.TemplateRepository{},
		txManager:    &mocks.TxManager{},
		gateway:      &mocks.GatewayClient{},
	}
	f.txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.service = service.NewDispatchService(f.contactRepo, f.orgRepo, f.messageRepo, f.templateRepo,
		f.txManager, f.gateway, "MEDDELA", nil, zap.NewNop())
	return f
}

func consentingContact() *model.Contact {
	return &model.Contact{
		ID:               7,
		OrganizationID:   1,
		Phone:            "+46701234567",
		Name:             "Anna Svensson",
		SMSConsent:       true,
		MarketingConsent: true,
	}
}

func organizationWithCredits(credits int) *model.Organization {
	return &model.Organization{ID: 1, Name: "Salong Saxen", SenderName: "SAXEN", SMSCredits: credits}
}

func assertServiceErrorCode(t *testing.T, err error, code string) {
	t.Helper()

	var serviceErr service.Error
	assert.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, code, serviceErr.Code)
}

func TestDispatch_SendPersonalizedSMS(t *testing.T) {
	ctx := context.Background()

	t.Run("sends and deducts credits by segment count", func(t *testing.T) {
		f := newDispatchFixture()
		org := organizationWithCredits(10)

		cmd := service.DispatchCommand{
			OrganizationID: 1,
			ContactID:      7,
			Message:        "Hej {{contact.first_name}}! " + strings.Repeat("a", 160),
			Type:           model.MessageTypeManual,
		}

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(org, nil)

		f.gateway.On("Send", ctx, mock.MatchedBy(func(req elks.SendRequest) bool {
			return req.To == "+46701234567" && req.From == "SAXEN" &&
				strings.HasPrefix(req.Message, "Hej Anna! ")
		})).Return(elks.SendResponse{ID: "s1234", Cost: 0.70, Parts: 2}, nil)

		f.messageRepo.On("Create", ctx, mock.MatchedBy(func(msg *model.Message) bool {
			return msg.Status == model.MessageStatusSent &&
				msg.OrganizationID == 1 &&
				*msg.ContactID == 7 &&
				*msg.GatewayMsgID == "s1234" &&
				msg.Cost == 0.70 &&
				msg.Segments == 2 &&
				msg.Direction == model.DirectionOutbound &&
				msg.SentAt != nil
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.Message).ID = 55
		}).Return(nil)

		f.contactRepo.On("IncrementSent", mock.Anything, int64(7)).Return(nil)
		f.orgRepo.On("DeductCredits", mock.Anything, int64(1), 2).Return(nil)

		result, err := f.service.SendPersonalizedSMS(ctx, cmd)

		assert.NoError(t, err)
		assert.Equal(t, int64(55), result.MessageID)
		assert.Equal(t, "s1234", result.GatewayID)
		assert.Equal(t, 0.70, result.Cost)
		assert.Equal(t, 2, result.Segments)
		assert.Equal(t, 8, org.SMSCredits)

		f.contactRepo.AssertExpectations(t)
		f.orgRepo.AssertExpectations(t)
		f.messageRepo.AssertExpectations(t)
		f.gateway.AssertExpectations(t)
	})

	t.Run("rejects empty message without touching the store", func(t *testing.T) {
		f := newDispatchFixture()

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "   ",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeContent)
		f.contactRepo.AssertNotCalled(t, "GetByID")
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("refuses without sms consent and never calls the gateway", func(t *testing.T) {
		f := newDispatchFixture()
		contact := consentingContact()
		contact.SMSConsent = false

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(contact, nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeConsent)
		f.gateway.AssertNotCalled(t, "Send")
		f.messageRepo.AssertNotCalled(t, "Create")
	})

	t.Run("missing contact maps to consent error", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(nil, repository.ErrContactNotFound)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeConsent)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("marketing send requires marketing consent", func(t *testing.T) {
		f := newDispatchFixture()
		contact := consentingContact()
		contact.MarketingConsent = false

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Rea!",
			Type: model.MessageTypeMarketing, Contact: contact,
		})

		assertServiceErrorCode(t, err, constants.ErrCodeConsent)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("organization load failure is an internal error", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(nil, errors.New("connection lost"))

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeInternalError)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("fails fast on zero credits before rendering", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(0), nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeCredit)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("refuses when credits cover fewer segments than needed", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(1), nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: strings.Repeat("a", 161),
		})

		assertServiceErrorCode(t, err, constants.ErrCodeCredit)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("refuses unresolved placeholders and lists the tokens", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(10), nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej {{unknown.token}}!",
		})

		var serviceErr service.Error
		assert.True(t, errors.As(err, &serviceErr))
		assert.Equal(t, constants.ErrCodePlaceholder, serviceErr.Code)
		assert.Equal(t, []string{"{{unknown.token}}"}, serviceErr.Tokens)
		f.gateway.AssertNotCalled(t, "Send")
	})

	t.Run("maps gateway rejection to provider error", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(10), nil)
		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{}, &elks.SendError{Code: elks.ErrorCodeServer, Message: "boom"})

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeProvider)
		f.messageRepo.AssertNotCalled(t, "Create")
		f.orgRepo.AssertNotCalled(t, "DeductCredits")
	})

	t.Run("missing gateway credentials map to config error", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(10), nil)
		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{}, &elks.SendError{Code: elks.ErrorCodeConfig, Message: "no credentials"})

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeConfig)
	})

	t.Run("persistence failure after send is an internal error", func(t *testing.T) {
		f := newDispatchFixture()

		f.contactRepo.On("GetByID", ctx, int64(1), int64(7)).Return(consentingContact(), nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(10), nil)
		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{ID: "s1", Cost: 0.35, Parts: 1}, nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*model.Message")).
			Return(errors.New("connection lost"))

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
		})

		assertServiceErrorCode(t, err, constants.ErrCodeInternalError)
		f.orgRepo.AssertNotCalled(t, "DeductCredits")
	})

	t.Run("uses pre-fetched rows without re-querying", func(t *testing.T) {
		f := newDispatchFixture()
		contact := consentingContact()
		org := organizationWithCredits(5)

		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{ID: "s2", Cost: 0.35, Parts: 1}, nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*model.Message")).Return(nil)
		f.contactRepo.On("IncrementSent", mock.Anything, int64(7)).Return(nil)
		f.orgRepo.On("DeductCredits", mock.Anything, int64(1), 1).Return(nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
			Contact: contact, Organization: org,
		})

		assert.NoError(t, err)
		assert.Equal(t, 4, org.SMSCredits)
		f.contactRepo.AssertNotCalled(t, "GetByID")
		f.orgRepo.AssertNotCalled(t, "GetByID")
	})

	t.Run("falls back to the default sender name", func(t *testing.T) {
		f := newDispatchFixture()
		org := organizationWithCredits(5)
		org.SenderName = ""

		f.gateway.On("Send", ctx, mock.MatchedBy(func(req elks.SendRequest) bool {
			return req.From == "MEDDELA"
		})).Return(elks.SendResponse{ID: "s3", Cost: 0.35, Parts: 1}, nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*model.Message")).Return(nil)
		f.contactRepo.On("IncrementSent", mock.Anything, int64(7)).Return(nil)
		f.orgRepo.On("DeductCredits", mock.Anything, int64(1), 1).Return(nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
			Contact: consentingContact(), Organization: org,
		})

		assert.NoError(t, err)
		f.gateway.AssertExpectations(t)
	})

	t.Run("concurrent exhaustion during deduct maps to credit error", func(t *testing.T) {
		f := newDispatchFixture()

		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{ID: "s4", Cost: 0.35, Parts: 1}, nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*model.Message")).Return(nil)
		f.contactRepo.On("IncrementSent", mock.Anything, int64(7)).Return(nil)
		f.orgRepo.On("DeductCredits", mock.Anything, int64(1), 1).Return(repository.ErrInsufficientCredits)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!",
			Contact: consentingContact(), Organization: organizationWithCredits(5),
		})

		assertServiceErrorCode(t, err, constants.ErrCodeCredit)
	})

	t.Run("bumps template usage when a template id is supplied", func(t *testing.T) {
		f := newDispatchFixture()
		templateID := int64(3)

		f.gateway.On("Send", ctx, mock.AnythingOfType("elks.SendRequest")).
			Return(elks.SendResponse{ID: "s5", Cost: 0.35, Parts: 1}, nil)
		f.messageRepo.On("Create", ctx, mock.AnythingOfType("*model.Message")).Return(nil)
		f.templateRepo.On("IncrementUsage", ctx, templateID).Return(nil)
		f.contactRepo.On("IncrementSent", mock.Anything, int64(7)).Return(nil)
		f.orgRepo.On("DeductCredits", mock.Anything, int64(1), 1).Return(nil)

		_, err := f.service.SendPersonalizedSMS(ctx, service.DispatchCommand{
			OrganizationID: 1, ContactID: 7, Message: "Hej!", TemplateID: &templateID,
			Contact: consentingContact(), Organization: organizationWithCredits(5),
		})

		assert.NoError(t, err)
		f.templateRepo.AssertExpectations(t)
	})
}
