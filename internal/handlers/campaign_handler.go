package handlers

import (
	"net/http"
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"
	"github.com/boltspazor/MR-Dmak-sub002/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignService *services.CampaignService
	progressService *services.ProgressService
}

func NewCampaignHandler(db *gorm.DB, rabbitMQService *services.RabbitMQService) *CampaignHandler {
	campaignRepo := repository.NewCampaignRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	listRepo := repository.NewRecipientListRepository(db)
	recordRepo := repository.NewMessageRecordRepository(db)

	var publisher services.DispatchJobPublisher = services.UnavailablePublisher{}
	if rabbitMQService != nil {
		publisher = rabbitMQService
	}

	campaignService := services.NewCampaignService(campaignRepo, templateRepo, listRepo, publisher)
	progressService := services.NewProgressService(campaignRepo, recordRepo)
	return &CampaignHandler{
		campaignService: campaignService,
		progressService: progressService,
	}
}

// CreateCampaign godoc
// @Summary Create a new campaign
// @Description Create a draft campaign bound to a template and a validated recipient list
// @Tags campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCampaignRequest true "Create campaign request"
// @Success 201 {object} models.Campaign
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req models.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	campaign, err := h.campaignService.CreateCampaign(&req)
	if err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "different template") || strings.Contains(err.Error(), "no valid recipients") {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, campaign)
}

// ListCampaigns godoc
// @Summary List campaigns
// @Description List campaigns, newest first, with pagination
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	campaigns, total, err := h.campaignService.ListCampaigns(utils.CalculateOffset(page, pageSize), pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list campaigns", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns":  campaigns,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}

// GetCampaign godoc
// @Summary Get campaign by ID
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.Campaign
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// SendCampaign godoc
// @Summary Submit a campaign for dispatch
// @Description Move a draft campaign to sending and enqueue its dispatch job
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 202 {object} models.DispatchJob
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/send [post]
func (h *CampaignHandler) SendCampaign(c *gin.Context) {
	job, err := h.campaignService.SendCampaign(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "already submitted") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, job)
}

// CancelCampaign godoc
// @Summary Cancel a campaign
// @Description Stop enqueuing sends; messages already handed to the provider keep settling
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/cancel [post]
func (h *CampaignHandler) CancelCampaign(c *gin.Context) {
	err := h.campaignService.CancelCampaign(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "already finished") {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel campaign", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// GetCampaignProgress godoc
// @Summary Get live campaign progress
// @Description Aggregate per-state counts computed from message records at query time
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} models.CampaignProgress
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/campaigns/{id}/progress [get]
func (h *CampaignHandler) GetCampaignProgress(c *gin.Context) {
	progress, err := h.progressService.Progress(c.Param("id"))
	if err != nil {
		if strings.Contains(err.Error(), "record not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute progress", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, progress)
}
