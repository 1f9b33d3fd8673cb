package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// WebhookSender posts alerts as JSON to a generic HTTP endpoint.
// Config: url (required), secret (optional). With a secret, requests are
// signed with HMAC-SHA256 in X-Signature-256.
type WebhookSender struct {
	client *http.Client
}

// NewWebhookSender creates a generic webhook sender.
func NewWebhookSender() *WebhookSender {
	return &WebhookSender{client: newHTTPClient()}
}

func (w *WebhookSender) Type() model.ChannelType { return model.ChannelWebhook }

func (w *WebhookSender) Send(ctx context.Context, alert model.CostAlert, config map[string]any) error {
	url, err := configString(config, "url")
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}

	payload := webhookPayload{
		Event:     "cost_alert",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Alert:     alert,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Cloud-Cost-Monitor/1.0")

	if secret := optionalString(config, "secret"); secret != "" {
		sig := computeHMAC(body, []byte(secret))
		req.Header.Set("X-Signature-256", "sha256="+sig)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

type webhookPayload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Alert     model.CostAlert `json:"alert"`
}

func computeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
