package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/meddela/dispatch/internal/constants"
	"github.com/meddela/dispatch/internal/mocks"
	"github.com/meddela/dispatch/internal/model"
	"github.com/meddela/dispatch/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type campaignFixture struct {
	campaignRepo *mocks.CampaignRepository
	contactRepo  *mocks.ContactRepository
	orgRepo      *mocks.OrganizationRepository
	dispatch     *mocks.DispatchService
	service      service.CampaignService
}

func newCampaignFixture() *campaignFixture {
	f := &campaignFixture{
		campaignRepo: &mocks.CampaignRepository{},
		contactRepo:  &mocks.ContactRepository{},
		orgRepo:      &mocks.OrganizationRepository{},
		dispatch:     &mocks.DispatchService{},
	}
	f.service = service.NewCampaignService(f.campaignRepo, f.contactRepo, f.orgRepo,
		f.dispatch, 10, nil, zap.NewNop())
	return f
}

func dueCampaign(targetIDs ...int64) model.Campaign {
	return model.Campaign{
		ID:               42,
		OrganizationID:   1,
		Name:             "Vårkampanj",
		MessageTemplate:  "Hej {{contact.first_name}}, 20% rabatt denna vecka!",
		Status:           model.CampaignStatusScheduled,
		TargetContactIDs: targetIDs,
	}
}

func campaignContacts(ids ...int64) []model.Contact {
	contacts := make([]model.Contact, 0, len(ids))
	for _, id := range ids {
		contacts = append(contacts, model.Contact{
			ID:               id,
			OrganizationID:   1,
			Phone:            fmt.Sprintf("+4670000000%d", id),
			Name:             "Kontakt",
			SMSConsent:       true,
			MarketingConsent: true,
		})
	}
	return contacts
}

func TestCampaign_ProcessDueCampaigns(t *testing.T) {
	ctx := context.Background()

	t.Run("no due campaigns yields an empty summary", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{}, nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, summary.Processed)
		assert.Empty(t, summary.Campaigns)
	})

	t.Run("query failure surfaces a database error", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return(nil, errors.New("connection refused"))

		_, err := f.service.ProcessDueCampaigns(ctx)

		assert.ErrorIs(t, err, service.ErrDatabase)
	})

	t.Run("sends to every targeted contact in order", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2, 3)}, nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2, 3}).
			Return(campaignContacts(1, 2, 3), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(100), nil)

		f.dispatch.On("SendPersonalizedSMS", ctx, mock.MatchedBy(func(cmd service.DispatchCommand) bool {
			return cmd.Type == model.MessageTypeMarketing && cmd.Organization != nil && cmd.Contact != nil
		})).Return(service.DispatchResult{Cost: 0.35, Segments: 1}, nil).Times(3)

		f.campaignRepo.On("Complete", ctx, int64(42), 3, 0, mock.AnythingOfType("float64"),
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.Processed)
		assert.Equal(t, 3, summary.Campaigns[0].Sent)
		assert.Equal(t, 0, summary.Campaigns[0].Failed)
		assert.InDelta(t, 1.05, summary.Campaigns[0].Cost, 0.0001)
		f.dispatch.AssertExpectations(t)
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("credit exhaustion fails the rest without calling dispatch", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2, 3, 4, 5)}, nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2, 3, 4, 5}).
			Return(campaignContacts(1, 2, 3, 4, 5), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(2), nil)

		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{Cost: 0.35, Segments: 1}, nil).Twice()
		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{}, service.NewServiceError(constants.ErrCodeCredit,
				errors.New("organization has no SMS credits"))).Once()

		f.campaignRepo.On("Complete", ctx, int64(42), 2, 3, mock.AnythingOfType("float64"),
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, summary.Campaigns[0].Sent)
		assert.Equal(t, 3, summary.Campaigns[0].Failed)
		f.dispatch.AssertNumberOfCalls(t, "SendPersonalizedSMS", 3)
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("campaign with no targets completes immediately", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign()}, nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.campaignRepo.On("Complete", ctx, int64(42), 0, 0, 0.0,
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.Processed)
		f.dispatch.AssertNotCalled(t, "SendPersonalizedSMS")
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("tag fetch failure reschedules instead of completing", func(t *testing.T) {
		f := newCampaignFixture()
		campaign := dueCampaign()
		campaign.TargetTags = model.StringList{"vip"}

		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{campaign}, nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.contactRepo.On("FindByTags", ctx, int64(1), []string{"vip"}).
			Return(nil, errors.New("connection refused"))
		f.campaignRepo.On("Reschedule", ctx, int64(42)).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, summary.Processed)
		assert.Empty(t, summary.Campaigns)
		f.campaignRepo.AssertNotCalled(t, "Complete")
		f.dispatch.AssertNotCalled(t, "SendPersonalizedSMS")
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("contact id fetch failure reschedules instead of completing", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2)}, nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2}).
			Return(nil, errors.New("connection refused"))
		f.campaignRepo.On("Reschedule", ctx, int64(42)).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, summary.Processed)
		f.campaignRepo.AssertNotCalled(t, "Complete")
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("resolves targets by tags when no id list is set", func(t *testing.T) {
		f := newCampaignFixture()
		campaign := dueCampaign()
		campaign.TargetTags = model.StringList{"vip"}

		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{campaign}, nil)
		f.contactRepo.On("FindByTags", ctx, int64(1), []string{"vip"}).
			Return(campaignContacts(8, 9), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(100), nil)
		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{Cost: 0.35, Segments: 1}, nil).Twice()
		f.campaignRepo.On("Complete", ctx, int64(42), 2, 0, mock.AnythingOfType("float64"),
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, summary.Campaigns[0].Sent)
		f.dispatch.AssertExpectations(t)
	})

	t.Run("missing contact counts failed and the rest still send", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2, 3)}, nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2, 3}).
			Return(campaignContacts(1, 3), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(100), nil)
		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{Cost: 0.35, Segments: 1}, nil).Twice()
		f.campaignRepo.On("Complete", ctx, int64(42), 2, 1, mock.AnythingOfType("float64"),
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, summary.Campaigns[0].Sent)
		assert.Equal(t, 1, summary.Campaigns[0].Failed)
		f.campaignRepo.AssertExpectations(t)
	})

	t.Run("recipient-local errors do not stop the run", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2)}, nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2}).
			Return(campaignContacts(1, 2), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(organizationWithCredits(100), nil)

		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{}, service.NewServiceError(constants.ErrCodeConsent,
				errors.New("contact has not consented to marketing SMS"))).Once()
		f.dispatch.On("SendPersonalizedSMS", ctx, mock.AnythingOfType("service.DispatchCommand")).
			Return(service.DispatchResult{Cost: 0.35, Segments: 1}, nil).Once()

		f.campaignRepo.On("Complete", ctx, int64(42), 1, 1, mock.AnythingOfType("float64"),
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 1, summary.Campaigns[0].Sent)
		assert.Equal(t, 1, summary.Campaigns[0].Failed)
		f.dispatch.AssertNumberOfCalls(t, "SendPersonalizedSMS", 2)
	})

	t.Run("skips a campaign another worker already claimed", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1)}, nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).
			Return(errors.New("campaign is not in scheduled state"))

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 0, summary.Processed)
		assert.Empty(t, summary.Campaigns)
		f.contactRepo.AssertNotCalled(t, "GetByIDs")
		f.dispatch.AssertNotCalled(t, "SendPersonalizedSMS")
		f.campaignRepo.AssertNotCalled(t, "Complete")
	})

	t.Run("organization load failure fails every recipient", func(t *testing.T) {
		f := newCampaignFixture()
		f.campaignRepo.On("FindDue", ctx, mock.AnythingOfType("time.Time"), 10).
			Return([]model.Campaign{dueCampaign(1, 2)}, nil)
		f.contactRepo.On("GetByIDs", ctx, int64(1), []int64{1, 2}).
			Return(campaignContacts(1, 2), nil)
		f.campaignRepo.On("MarkSending", ctx, int64(42)).Return(nil)
		f.orgRepo.On("GetByID", ctx, int64(1)).Return(nil, errors.New("connection lost"))
		f.campaignRepo.On("Complete", ctx, int64(42), 0, 2, 0.0,
			mock.AnythingOfType("time.Time")).Return(nil)

		summary, err := f.service.ProcessDueCampaigns(ctx)

		assert.NoError(t, err)
		assert.Equal(t, 2, summary.Campaigns[0].Failed)
		f.dispatch.AssertNotCalled(t, "SendPersonalizedSMS")
		f.campaignRepo.AssertExpectations(t)
	})
}
