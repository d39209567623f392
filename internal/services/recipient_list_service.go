package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

// RecipientListWriter persists validated recipient lists
type RecipientListWriter interface {
	Create(list *models.RecipientList) error
	GetByID(id string) (*models.RecipientList, error)
}

// RecipientListService turns raw upload rows into an immutable, validated
// recipient list.
type RecipientListService struct {
	templates TemplateStore
	lists     RecipientListWriter
	resolver  *RecipientResolver
}

func NewRecipientListService(templates TemplateStore, lists RecipientListWriter, resolver *RecipientResolver) *RecipientListService {
	return &RecipientListService{
		templates: templates,
		lists:     lists,
		resolver:  resolver,
	}
}

// CreateList resolves the rows against the template and registry, stores
// the accepted entries, and returns the full rejection list for display.
// ErrUnexpectedParameter aborts the whole upload.
func (s *RecipientListService) CreateList(req *models.CreateRecipientListRequest) (*models.RecipientList, []models.RejectionReason, error) {
	template, err := s.templates.GetByID(req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errors.New("template not found")
		}
		return nil, nil, fmt.Errorf("failed to load template: %w", err)
	}

	entries, rejected, err := s.resolver.Resolve(template, req.Rows)
	if err != nil {
		return nil, nil, err
	}

	list := &models.RecipientList{
		Name:       req.Name,
		TemplateID: template.ID,
		Version:    1,
		Entries:    entries,
	}
	if err := s.lists.Create(list); err != nil {
		return nil, nil, fmt.Errorf("failed to store recipient list: %w", err)
	}
	return list, rejected, nil
}

// GetList retrieves a list with its entries in upload order
func (s *RecipientListService) GetList(id string) (*models.RecipientList, error) {
	list, err := s.lists.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("recipient list not found")
		}
		return nil, fmt.Errorf("failed to load recipient list: %w", err)
	}
	return list, nil
}
