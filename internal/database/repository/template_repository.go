package repository

import (
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"

	"gorm.io/gorm"
)

type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Create creates a new template
func (r *TemplateRepository) Create(template *models.Template) error {
	return r.db.Create(template).Error
}

// GetByID retrieves a template by ID
func (r *TemplateRepository) GetByID(id string) (*models.Template, error) {
	var template models.Template
	err := r.db.First(&template, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

// GetAll retrieves all templates
func (r *TemplateRepository) GetAll() ([]*models.Template, error) {
	var templates []*models.Template
	err := r.db.Order("created_at DESC").Find(&templates).Error
	return templates, err
}
