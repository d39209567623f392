package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// TemplateStore loads templates for campaign validation
type TemplateStore interface {
	GetByID(id string) (*models.Template, error)
}

// CampaignLister adds listing on top of CampaignStore for the API surface
type CampaignLister interface {
	CampaignStore
	Create(campaign *models.Campaign) error
	GetAll(offset, limit int) ([]*models.Campaign, int64, error)
}

// DispatchJobPublisher hands dispatch jobs to the queue
type DispatchJobPublisher interface {
	PublishDispatchJob(job models.DispatchJob) error
}

// UnavailablePublisher stands in when the queue could not be reached at
// startup; campaign submission fails cleanly instead of panicking.
type UnavailablePublisher struct{}

func (UnavailablePublisher) PublishDispatchJob(models.DispatchJob) error {
	return errors.New("dispatch queue unavailable")
}

// CampaignService owns the campaign lifecycle up to handing a dispatch job
// to the queue. Sending itself happens in the dispatcher.
type CampaignService struct {
	campaigns CampaignLister
	templates TemplateStore
	lists     RecipientListStore
	publisher DispatchJobPublisher
}

func NewCampaignService(
	campaigns CampaignLister,
	templates TemplateStore,
	lists RecipientListStore,
	publisher DispatchJobPublisher,
) *CampaignService {
	return &CampaignService{
		campaigns: campaigns,
		templates: templates,
		lists:     lists,
		publisher: publisher,
	}
}

// CreateCampaign creates a draft campaign after validating its template
// and recipient-list references agree.
func (s *CampaignService) CreateCampaign(req *models.CreateCampaignRequest) (*models.Campaign, error) {
	if _, err := s.templates.GetByID(req.TemplateID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("template not found")
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}

	list, err := s.lists.GetByID(req.RecipientListID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("recipient list not found")
		}
		return nil, fmt.Errorf("failed to load recipient list: %w", err)
	}
	if list.TemplateID != req.TemplateID {
		return nil, errors.New("recipient list was validated against a different template")
	}
	if len(list.Entries) == 0 {
		return nil, errors.New("recipient list has no valid recipients")
	}

	campaign := &models.Campaign{
		Name:            req.Name,
		TemplateID:      req.TemplateID,
		RecipientListID: req.RecipientListID,
		Status:          models.CampaignStatusDraft,
	}
	if err := s.campaigns.Create(campaign); err != nil {
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}
	return campaign, nil
}

// SendCampaign moves a draft campaign to sending and enqueues its dispatch
// job. The status guard makes double-submission a no-op conflict; a resend
// after completion requires a new campaign.
func (s *CampaignService) SendCampaign(campaignID string) (*models.DispatchJob, error) {
	if _, err := s.campaigns.GetByID(campaignID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	ok, err := s.campaigns.TransitionStatus(campaignID, models.CampaignStatusDraft, models.CampaignStatusSending)
	if err != nil {
		return nil, fmt.Errorf("failed to update campaign status: %w", err)
	}
	if !ok {
		return nil, errors.New("campaign already submitted")
	}

	job := models.DispatchJob{
		JobID:      uuid.NewString(),
		CampaignID: campaignID,
	}
	if err := s.publisher.PublishDispatchJob(job); err != nil {
		// The campaign would otherwise sit in sending with no job behind it
		if _, terr := s.campaigns.TransitionStatus(campaignID, models.CampaignStatusSending, models.CampaignStatusFailed); terr != nil {
			logrus.WithField("campaign_id", campaignID).Errorf("Failed to mark campaign failed after publish error: %v", terr)
		}
		return nil, fmt.Errorf("failed to enqueue dispatch job: %w", err)
	}
	return &job, nil
}

// CancelCampaign stops further sends for a campaign. Messages already
// handed to the provider cannot be unsent and keep settling through
// webhooks.
func (s *CampaignService) CancelCampaign(campaignID string) error {
	if _, err := s.campaigns.GetByID(campaignID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("campaign not found")
		}
		return fmt.Errorf("failed to load campaign: %w", err)
	}

	for _, from := range []models.CampaignStatus{models.CampaignStatusDraft, models.CampaignStatusSending} {
		ok, err := s.campaigns.TransitionStatus(campaignID, from, models.CampaignStatusCancelled)
		if err != nil {
			return fmt.Errorf("failed to cancel campaign: %w", err)
		}
		if ok {
			return nil
		}
	}
	return errors.New("campaign is already finished")
}

// GetCampaign retrieves one campaign
func (s *CampaignService) GetCampaign(campaignID string) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	return campaign, nil
}

// ListCampaigns retrieves campaigns with pagination
func (s *CampaignService) ListCampaigns(offset, limit int) ([]*models.Campaign, int64, error) {
	campaigns, total, err := s.campaigns.GetAll(offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, total, nil
}
