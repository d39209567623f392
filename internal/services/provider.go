package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/boltspazor/MR-Dmak-sub002/internal/config"
)

// ProviderClient is the boundary to the messaging provider's send API.
// Send returns the provider message id on success; failures carry the
// provider's error payload as a *ProviderError where one was returned.
type ProviderClient interface {
	Send(ctx context.Context, phoneNumber, body, mediaURL string) (providerMessageID string, err error)
}

// ProviderError preserves the provider's numeric code and message verbatim
// for operator diagnosis.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

// transientProviderCodes is the retry policy as data: codes the provider
// documents as retryable. Anything absent is permanent and fails the
// recipient immediately.
var transientProviderCodes = map[int]bool{
	0:      true, // unknown upstream error
	80007:  true, // rate limit hit
	130429: true, // cloud api rate limit hit
	131000: true, // something went wrong
	131016: true, // service unavailable
	131056: true, // business/consumer pair rate limit
}

// IsTransientProviderError reports whether an error from Send should be
// retried. Transport errors (timeouts, connection resets) never produced a
// provider verdict, so they are transient by definition.
func IsTransientProviderError(err error) bool {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return transientProviderCodes[perr.Code]
	}
	return err != nil
}

// WhatsAppClient sends messages through the WhatsApp Cloud API
type WhatsAppClient struct {
	baseURL       string
	accessToken   string
	phoneNumberID string
	client        *http.Client
}

func NewWhatsAppClient(cfg *config.ProviderConfig) *WhatsAppClient {
	return &WhatsAppClient{
		baseURL:       cfg.BaseURL,
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppImage struct {
	Link    string `json:"link"`
	Caption string `json:"caption,omitempty"`
}

type whatsAppSendRequest struct {
	MessagingProduct string         `json:"messaging_product"`
	To               string         `json:"to"`
	Type             string         `json:"type"`
	Text             *whatsAppText  `json:"text,omitempty"`
	Image            *whatsAppImage `json:"image,omitempty"`
}

type whatsAppSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send posts one outbound message. The context deadline combines with the
// client timeout; a timeout surfaces as a transport error, which the
// dispatcher treats as transient.
func (c *WhatsAppClient) Send(ctx context.Context, phoneNumber, body, mediaURL string) (string, error) {
	payload := whatsAppSendRequest{
		MessagingProduct: "whatsapp",
		To:               phoneNumber,
	}
	if mediaURL != "" {
		payload.Type = "image"
		payload.Image = &whatsAppImage{Link: mediaURL, Caption: body}
	} else {
		payload.Type = "text"
		payload.Text = &whatsAppText{Body: body}
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}

	var parsed whatsAppSendResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w body=%q", err, string(respBody))
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		if parsed.Error != nil {
			return "", &ProviderError{Code: parsed.Error.Code, Message: parsed.Error.Message}
		}
		return "", &ProviderError{Code: 0, Message: fmt.Sprintf("unexpected status %d body=%q", resp.StatusCode, string(respBody))}
	}

	if len(parsed.Messages) == 0 || parsed.Messages[0].ID == "" {
		return "", fmt.Errorf("provider response missing message id body=%q", string(respBody))
	}
	return parsed.Messages[0].ID, nil
}
