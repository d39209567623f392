package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/boltspazor/MR-Dmak-sub002/internal/database/repository"
	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
	"github.com/boltspazor/MR-Dmak-sub002/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type WebhookHandler struct {
	processor   *services.StatusProcessor
	verifyToken string
}

func NewWebhookHandler(db *gorm.DB, verifyToken string) *WebhookHandler {
	recordRepo := repository.NewMessageRecordRepository(db)
	return &WebhookHandler{
		processor:   services.NewStatusProcessor(recordRepo),
		verifyToken: verifyToken,
	}
}

// whatsAppWebhookPayload is the provider's notification envelope. It is
// parsed exactly once, here; the state machine only ever sees StatusEvents.
type whatsAppWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		ID      string `json:"id"`
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				MessagingProduct string `json:"messaging_product"`
				Statuses         []struct {
					ID        string `json:"id"`
					Status    string `json:"status"`
					Timestamp string `json:"timestamp"`
					Errors    []struct {
						Code    int    `json:"code"`
						Title   string `json:"title"`
						Message string `json:"message"`
					} `json:"errors"`
				} `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Verify godoc
// @Summary Webhook verification handshake
// @Description Echo the challenge when the provider registers this endpoint
// @Tags webhooks
// @Produce plain
// @Param hub.mode query string true "Mode"
// @Param hub.verify_token query string true "Verify token"
// @Param hub.challenge query string true "Challenge"
// @Success 200 {string} string
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/webhooks/whatsapp [get]
func (h *WebhookHandler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "verification failed"})
}

// Receive godoc
// @Summary Receive delivery-status callbacks
// @Description Apply provider status notifications; duplicates, reordered and unknown-target events are tolerated
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/webhooks/whatsapp [post]
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload whatsAppWebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload", "details": err.Error()})
		return
	}

	events := parseStatusEvents(&payload)
	for _, event := range events {
		if err := h.processor.Process(event); err != nil {
			// Processing is idempotent, so acking anyway and letting the
			// provider redeliver is safe; a hard failure here is storage
			// trouble, not a bad event.
			logrus.WithField("provider_message_id", event.ProviderMessageID).
				Errorf("Failed to process status event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"processed": len(events)})
}

// parseStatusEvents flattens the provider envelope into tagged events,
// dropping entries that are not delivery statuses.
func parseStatusEvents(payload *whatsAppWebhookPayload) []models.StatusEvent {
	var events []models.StatusEvent
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			for _, status := range change.Value.Statuses {
				kind, ok := statusKind(status.Status)
				if !ok {
					logrus.Warnf("Unknown webhook status %q ignored", status.Status)
					continue
				}

				event := models.StatusEvent{
					ProviderMessageID: status.ID,
					Kind:              kind,
					Timestamp:         parseUnixTimestamp(status.Timestamp),
				}
				if len(status.Errors) > 0 {
					code := status.Errors[0].Code
					event.ErrorCode = &code
					event.ErrorMessage = status.Errors[0].Message
					if event.ErrorMessage == "" {
						event.ErrorMessage = status.Errors[0].Title
					}
				}
				events = append(events, event)
			}
		}
	}
	return events
}

func statusKind(status string) (models.StatusEventKind, bool) {
	switch status {
	case "sent":
		return models.StatusEventSent, true
	case "delivered":
		return models.StatusEventDelivered, true
	case "read":
		return models.StatusEventRead, true
	case "failed":
		return models.StatusEventFailed, true
	default:
		return "", false
	}
}

func parseUnixTimestamp(value string) time.Time {
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil || seconds <= 0 {
		return time.Time{}
	}
	return time.Unix(seconds, 0).UTC()
}
