package models

import (
	"time"
)

// CampaignStatus is the lifecycle status of a campaign. Transitions only
// move forward; a resend creates a new campaign.
type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
	CampaignStatusFailed    CampaignStatus = "failed"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

// Campaign represents one scheduled send of a template to a recipient list
type Campaign struct {
	ID              string         `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name            string         `json:"name" gorm:"type:varchar(255);not null"`
	TemplateID      string         `json:"template_id" gorm:"type:uuid;not null;index"`
	RecipientListID string         `json:"recipient_list_id" gorm:"type:uuid;not null;index"`
	Status          CampaignStatus `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	StartedAt       *time.Time     `json:"started_at,omitempty"`
	FinishedAt      *time.Time     `json:"finished_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`

	Template      *Template      `json:"template,omitempty" gorm:"foreignKey:TemplateID;references:ID"`
	RecipientList *RecipientList `json:"recipient_list,omitempty" gorm:"foreignKey:RecipientListID;references:ID"`
}

// TableName specifies the table name for the Campaign model
func (Campaign) TableName() string {
	return "campaigns"
}

// CreateCampaignRequest represents the request to create a new campaign
type CreateCampaignRequest struct {
	Name            string `json:"name" binding:"required" example:"December promo wave 1"`
	TemplateID      string `json:"template_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	RecipientListID string `json:"recipient_list_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440001"`
}

// CampaignProgress is the on-demand aggregate over a campaign's message
// records. Counts are computed from live record state at query time; there
// are no separately maintained counters.
type CampaignProgress struct {
	CampaignID  string         `json:"campaign_id"`
	Status      CampaignStatus `json:"status"`
	Total       int64          `json:"total"`
	Sent        int64          `json:"sent"`
	Delivered   int64          `json:"delivered"`
	Read        int64          `json:"read"`
	Failed      int64          `json:"failed"`
	Pending     int64          `json:"pending"`
	SuccessRate float64        `json:"success_rate"`
}

// DispatchJob is the queue payload asking a worker to dispatch a campaign
type DispatchJob struct {
	JobID      string `json:"job_id"`
	CampaignID string `json:"campaign_id"`
}
