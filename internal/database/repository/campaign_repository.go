package repository

import (
	"time"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// GetByID retrieves a campaign by ID
func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var campaign models.Campaign
	err := r.db.Preload("Template").
		Preload("RecipientList").
		First(&campaign, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

// GetAll retrieves campaigns with offset pagination, newest first
func (r *CampaignRepository) GetAll(offset, limit int) ([]*models.Campaign, int64, error) {
	var total int64
	if err := r.db.Model(&models.Campaign{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []*models.Campaign
	err := r.db.Preload("Template").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&campaigns).Error
	return campaigns, total, err
}

// TransitionStatus advances a campaign from one status to another. The
// guard on the current status keeps lifecycle transitions forward-only even
// under concurrent workers; it reports whether the row was updated.
func (r *CampaignRepository) TransitionStatus(id string, from, to models.CampaignStatus) (bool, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	switch to {
	case models.CampaignStatusSending:
		updates["started_at"] = time.Now().UTC()
	case models.CampaignStatusCompleted, models.CampaignStatusFailed, models.CampaignStatusCancelled:
		updates["finished_at"] = time.Now().UTC()
	}

	result := r.db.Model(&models.Campaign{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetStatus returns only the current lifecycle status of a campaign
func (r *CampaignRepository) GetStatus(id string) (models.CampaignStatus, error) {
	var campaign models.Campaign
	err := r.db.Select("status").First(&campaign, "id = ?", id).Error
	if err != nil {
		return "", err
	}
	return campaign.Status, nil
}
