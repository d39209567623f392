package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/boltspazor/MR-Dmak-sub002/internal/models"
)

func verifyRouter(verifyToken string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewWebhookHandler(nil, verifyToken)
	r := gin.New()
	r.GET("/webhooks/whatsapp", handler.Verify)
	return r
}

func TestVerifyHandshake(t *testing.T) {
	r := verifyRouter("secret-token")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=424242", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "424242" {
		t.Errorf("body = %q, want the challenge echoed", w.Body.String())
	}
}

func TestVerifyHandshakeRejected(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"wrong token", "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=1"},
		{"wrong mode", "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=1"},
		{"empty token", "hub.mode=subscribe&hub.verify_token=&hub.challenge=1"},
	}

	r := verifyRouter("secret-token")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/webhooks/whatsapp?"+tt.query, nil)
			r.ServeHTTP(w, req)
			if w.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", w.Code)
			}
		})
	}
}

const sampleEnvelope = `{
  "object": "whatsapp_business_account",
  "entry": [
    {
      "id": "1001",
      "changes": [
        {
          "field": "messages",
          "value": {
            "messaging_product": "whatsapp",
            "statuses": [
              {"id": "wamid.A", "status": "delivered", "timestamp": "1756700000"},
              {
                "id": "wamid.B",
                "status": "failed",
                "timestamp": "1756700100",
                "errors": [{"code": 131047, "title": "Re-engagement message", "message": "Message failed to send"}]
              },
              {"id": "wamid.C", "status": "held_for_review", "timestamp": "1756700200"}
            ]
          }
        },
        {
          "field": "account_update",
          "value": {"messaging_product": "whatsapp"}
        }
      ]
    }
  ]
}`

func TestParseStatusEvents(t *testing.T) {
	var payload whatsAppWebhookPayload
	if err := json.Unmarshal([]byte(sampleEnvelope), &payload); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}

	events := parseStatusEvents(&payload)
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2 (unknown status dropped)", len(events))
	}

	if events[0].ProviderMessageID != "wamid.A" || events[0].Kind != models.StatusEventDelivered {
		t.Errorf("event 0 = %+v", events[0])
	}
	if !events[0].Timestamp.Equal(time.Unix(1756700000, 0).UTC()) {
		t.Errorf("event 0 timestamp = %v", events[0].Timestamp)
	}

	if events[1].Kind != models.StatusEventFailed {
		t.Errorf("event 1 = %+v", events[1])
	}
	if events[1].ErrorCode == nil || *events[1].ErrorCode != 131047 {
		t.Errorf("event 1 error code = %v", events[1].ErrorCode)
	}
	if events[1].ErrorMessage != "Message failed to send" {
		t.Errorf("event 1 error message = %q", events[1].ErrorMessage)
	}
}

func TestParseStatusEventsTitleFallback(t *testing.T) {
	raw := `{"entry":[{"changes":[{"field":"messages","value":{"statuses":[
	  {"id":"wamid.X","status":"failed","timestamp":"1756700000","errors":[{"code":131026,"title":"Undeliverable"}]}
	]}}]}]}`

	var payload whatsAppWebhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	events := parseStatusEvents(&payload)
	if len(events) != 1 {
		t.Fatalf("events = %d", len(events))
	}
	if events[0].ErrorMessage != "Undeliverable" {
		t.Errorf("error message = %q, want title fallback", events[0].ErrorMessage)
	}
}

func TestParseUnixTimestamp(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"1756700000", time.Unix(1756700000, 0).UTC()},
		{"not-a-number", time.Time{}},
		{"", time.Time{}},
		{"-5", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseUnixTimestamp(tt.value); !got.Equal(tt.want) {
			t.Errorf("parseUnixTimestamp(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
