package repository

import (
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create creates a new contact
func (r *ContactRepository) Create(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(id string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.First(&contact, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// FindByIdentity retrieves a contact matching (contactCode, firstName,
// lastName) case-insensitively. Returns gorm.ErrRecordNotFound when the
// registry holds no such contact.
func (r *ContactRepository) FindByIdentity(contactCode, firstName, lastName string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.Where(
		"LOWER(contact_code) = ? AND LOWER(first_name) = ? AND LOWER(last_name) = ?",
		strings.ToLower(contactCode),
		strings.ToLower(firstName),
		strings.ToLower(lastName),
	).First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

// GetAll retrieves contacts with offset pagination
func (r *ContactRepository) GetAll(offset, limit int) ([]*models.Contact, int64, error) {
	var total int64
	if err := r.db.Model(&models.Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []*models.Contact
	err := r.db.Preload("Group").
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&contacts).Error
	return contacts, total, err
}
