package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RecipientListHandler struct {
	listService *services.RecipientListService
}

func NewRecipientListHandler(db *gorm.DB) *RecipientListHandler {
	templateRepo := repository.NewTemplateRepository(db)
	listRepo := repository.NewRecipientListRepository(db)
	resolver := services.NewRecipientResolver(
		repository.NewContactRepository(db),
		repository.NewConsentRepository(db),
	)
	return &RecipientListHandler{
		listService: services.NewRecipientListService(templateRepo, listRepo, resolver),
	}
}

// CreateRecipientList godoc
// @Summary Upload and validate a recipient list
// @Description Validate raw rows against the contact registry and the template's parameter set; rejected rows are returned, never dropped
// @Tags recipient-lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateRecipientListRequest true "Recipient list upload"
// @Success 201 {object} models.CreateRecipientListResponse
// @Failure 400 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Router /api/v1/recipient-lists [post]
func (h *RecipientListHandler) CreateRecipientList(c *gin.Context) {
	var req models.CreateRecipientListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	list, rejected, err := h.listService.CreateList(&req)
	if err != nil {
		if errors.Is(err, services.ErrUnexpectedParameter) {
			// A parameter the template never declared invalidates the
			// whole upload, not individual rows
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipient list", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, models.CreateRecipientListResponse{
		List:     list,
		Accepted: len(list.Entries),
		Rejected: rejected,
	})
}

// GetRecipientList godoc
// @Summary Get recipient list by ID
// @Tags recipient-lists
// @Produce json
// @Security BearerAuth
// @Param id path string true "Recipient list ID"
// @Success 200 {object} models.RecipientList
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/recipient-lists/{id} [get]
func (h *RecipientListHandler) GetRecipientList(c *gin.Context) {
	list, err := h.listService.GetList(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recipient list", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, list)
}
