package services

import (
	"fmt"
	"math"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// ProgressService computes live campaign progress by counting message
// records at query time. There are no separately maintained counters to
// drift out of sync.
type ProgressService struct {
	campaigns CampaignStore
	records   MessageRecordStore
}

func NewProgressService(campaigns CampaignStore, records MessageRecordStore) *ProgressService {
	return &ProgressService{
		campaigns: campaigns,
		records:   records,
	}
}

// Progress returns the aggregate for one campaign. "sent" counts every
// record at or past SENT on the progress scale; successRate is
// (sent+delivered+read)/total*100, 0 for an empty campaign. Completion is
// derived: a campaign in sending with no pending records reads as
// completed.
func (s *ProgressService) Progress(campaignID string) (*models.CampaignProgress, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	counts, err := s.records.CountByState(campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to count message records: %w", err)
	}

	delivered := counts[models.MessageStateDelivered]
	read := counts[models.MessageStateRead]
	sent := counts[models.MessageStateSent] + delivered + read
	failed := counts[models.MessageStateFailed]
	pending := counts[models.MessageStateQueued]
	total := sent + failed + pending

	var successRate float64
	if total > 0 {
		successRate = math.Round(float64(sent)/float64(total)*1000) / 10
	}

	status := campaign.Status
	if status == models.CampaignStatusSending && total > 0 && pending == 0 {
		status = models.CampaignStatusCompleted
	}

	return &models.CampaignProgress{
		CampaignID:  campaignID,
		Status:      status,
		Total:       total,
		Sent:        sent,
		Delivered:   delivered,
		Read:        read,
		Failed:      failed,
		Pending:     pending,
		SuccessRate: successRate,
	}, nil
}
