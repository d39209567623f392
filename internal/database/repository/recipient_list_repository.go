package repository

import (
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

type RecipientListRepository struct {
	db *gorm.DB
}

func NewRecipientListRepository(db *gorm.DB) *RecipientListRepository {
	return &RecipientListRepository{db: db}
}

// Create stores a recipient list together with its entries in one
// transaction. Lists are immutable after creation.
func (r *RecipientListRepository) Create(list *models.RecipientList) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(list).Error
	})
}

// GetByID retrieves a recipient list with entries in upload order
func (r *RecipientListRepository) GetByID(id string) (*models.RecipientList, error) {
	var list models.RecipientList
	err := r.db.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("recipient_entries.position ASC")
	}).Preload("Template").First(&list, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}
