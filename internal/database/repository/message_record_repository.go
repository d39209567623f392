package repository

import (
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

type MessageRecordRepository struct {
	db *gorm.DB
}

func NewMessageRecordRepository(db *gorm.DB) *MessageRecordRepository {
	return &MessageRecordRepository{db: db}
}

// CreateBatch inserts one queued record per recipient in a single
// transaction, so a progress query never observes a partial campaign.
func (r *MessageRecordRepository) CreateBatch(records []*models.MessageRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(records, 500).Error
	})
}

// GetByID retrieves a message record by ID
func (r *MessageRecordRepository) GetByID(id string) (*models.MessageRecord, error) {
	var record models.MessageRecord
	err := r.db.First(&record, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByProviderMessageID resolves a webhook event to its record
func (r *MessageRecordRepository) GetByProviderMessageID(providerMessageID string) (*models.MessageRecord, error) {
	var record models.MessageRecord
	err := r.db.First(&record, "provider_message_id = ?", providerMessageID).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// GetByCampaign retrieves all records for a campaign in creation order
func (r *MessageRecordRepository) GetByCampaign(campaignID string) ([]*models.MessageRecord, error) {
	var records []*models.MessageRecord
	err := r.db.Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&records).Error
	return records, err
}

// CompareAndTransition updates a record only while it still holds the
// observed state. Concurrent dispatch-result and webhook writers both go
// through this guard, so interleaved partial writes cannot regress a
// record; the caller re-reads and re-decides when false is returned.
func (r *MessageRecordRepository) CompareAndTransition(id string, from models.MessageState, updates map[string]interface{}) (bool, error) {
	result := r.db.Model(&models.MessageRecord{}).
		Where("id = ? AND state = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CountByState returns per-state record counts for a campaign from one
// grouped query
func (r *MessageRecordRepository) CountByState(campaignID string) (map[models.MessageState]int64, error) {
	type stateCount struct {
		State models.MessageState
		Count int64
	}
	var rows []stateCount
	err := r.db.Model(&models.MessageRecord{}).
		Select("state, COUNT(*) as count").
		Where("campaign_id = ?", campaignID).
		Group("state").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.MessageState]int64, len(rows))
	for _, row := range rows {
		counts[row.State] = row.Count
	}
	return counts, nil
}
