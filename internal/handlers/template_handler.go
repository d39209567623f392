package handlers

import (
	"net/http"
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TemplateHandler struct {
	templateRepo *repository.TemplateRepository
}

func NewTemplateHandler(db *gorm.DB) *TemplateHandler {
	return &TemplateHandler{
		templateRepo: repository.NewTemplateRepository(db),
	}
}

// CreateTemplate godoc
// @Summary Create a message template
// @Description The declared parameter set is derived by scanning the body for {{name}} placeholders
// @Tags templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateTemplateRequest true "Create template request"
// @Success 201 {object} models.Template
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req models.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	template := &models.Template{
		Name:           strings.TrimSpace(req.Name),
		Body:           req.Body,
		Parameters:     services.ScanTemplateParameters(req.Body),
		HeaderMediaURL: req.HeaderMediaURL,
		FooterText:     req.FooterText,
	}
	if err := h.templateRepo.Create(template); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			c.JSON(http.StatusConflict, gin.H{"error": "template name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ListTemplates godoc
// @Summary List templates
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Template
// @Router /api/v1/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateRepo.GetAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get template by ID
// @Tags templates
// @Produce json
// @Security BearerAuth
// @Param id path string true "Template ID"
// @Success 200 {object} models.Template
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	template, err := h.templateRepo.GetByID(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get template", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, template)
}
