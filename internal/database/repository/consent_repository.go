package repository

import (
	"errors"
	"time"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ConsentRepository struct {
	db *gorm.DB
}

func NewConsentRepository(db *gorm.DB) *ConsentRepository {
	return &ConsentRepository{db: db}
}

// Upsert records an opt-in/opt-out flag for a phone number
func (r *ConsentRepository) Upsert(phoneNumber string, optedOut bool) error {
	record := &models.ConsentRecord{
		PhoneNumber: phoneNumber,
		OptedOut:    optedOut,
		RecordedAt:  time.Now().UTC(),
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"opted_out", "recorded_at", "updated_at"}),
	}).Create(record).Error
}

// IsOptedOut reports whether a phone number has an active opt-out. Absence
// of a consent record means the number is sendable.
func (r *ConsentRepository) IsOptedOut(phoneNumber string) (bool, error) {
	var record models.ConsentRecord
	err := r.db.Where("phone_number = ?", phoneNumber).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return record.OptedOut, nil
}
