package handlers

import (
	"net/http"
	"strings"

	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ContactHandler is the collaborator seam to the contact registry and the
// consent store: just enough surface for the dispatch engine to have a
// registry to consult. Full contact management lives elsewhere.
type ContactHandler struct {
	contactRepo *repository.ContactRepository
	consentRepo *repository.ConsentRepository
}

func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{
		contactRepo: repository.NewContactRepository(db),
		consentRepo: repository.NewConsentRepository(db),
	}
}

// CreateContact godoc
// @Summary Register a contact
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateContactRequest true "Create contact request"
// @Success 201 {object} models.Contact
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/contacts [post]
func (h *ContactHandler) CreateContact(c *gin.Context) {
	var req models.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	contact := &models.Contact{
		ContactCode: strings.TrimSpace(req.ContactCode),
		FirstName:   strings.TrimSpace(req.FirstName),
		LastName:    strings.TrimSpace(req.LastName),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		GroupID:     req.GroupID,
	}
	if err := h.contactRepo.Create(contact); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			c.JSON(http.StatusConflict, gin.H{"error": "contact code already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact", "details": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// ListContacts godoc
// @Summary List contacts
// @Tags contacts
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/contacts [get]
func (h *ContactHandler) ListContacts(c *gin.Context) {
	page, pageSize := utils.ParsePaginationFromQuery(c.Query("page"), c.Query("page_size"))
	page, pageSize = utils.ValidateAndNormalizePagination(page, pageSize)

	contacts, total, err := h.contactRepo.GetAll(utils.CalculateOffset(page, pageSize), pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contacts", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"contacts":   contacts,
		"pagination": utils.CalculatePaginationInfo(int(total), page, pageSize),
	})
}

// UpsertConsent godoc
// @Summary Record an opt-in/opt-out flag for a phone number
// @Tags contacts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpsertConsentRequest true "Consent update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/contacts/consent [post]
func (h *ContactHandler) UpsertConsent(c *gin.Context) {
	var req models.UpsertConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "details": err.Error()})
		return
	}

	if err := h.consentRepo.Upsert(strings.TrimSpace(req.PhoneNumber), req.OptedOut); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record consent", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"phone_number": req.PhoneNumber, "opted_out": req.OptedOut})
}
