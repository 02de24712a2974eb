package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"advisory-portal/internal/config"
)

// Sender dispatches one outbound message to a lead's phone number and
// returns the provider's message ID.
type Sender interface {
	Send(phone, message string) (string, error)
}

// WhatsAppSender sends messages through a WhatsApp Business API gateway
type WhatsAppSender struct {
	endpoint string
	token    string
	sender   string
	client   *http.Client
}

// NewWhatsAppSender creates a sender from nurture configuration
func NewWhatsAppSender(cfg config.NurtureConfig) *WhatsAppSender {
	return &WhatsAppSender{
		endpoint: cfg.WhatsAppEndpoint,
		token:    cfg.WhatsAppToken,
		sender:   cfg.SenderNumber,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type whatsAppRequest struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

type whatsAppResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Send posts a message to the gateway and returns its message ID
func (w *WhatsAppSender) Send(phone, message string) (string, error) {
	if w.endpoint == "" {
		return "", fmt.Errorf("whatsapp endpoint not configured")
	}

	payload, err := json.Marshal(whatsAppRequest{
		To:      phone,
		From:    w.sender,
		Message: message,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("whatsapp gateway returned status %d", resp.StatusCode)
	}

	var parsed whatsAppResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse gateway response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("whatsapp gateway error: %s", parsed.Error)
	}

	return parsed.MessageID, nil
}
