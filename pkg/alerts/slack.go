package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// SlackSender posts alerts to a Slack incoming webhook.
// Config: webhook_url (required), channel (optional).
type SlackSender struct {
	client *http.Client
}

// NewSlackSender creates a Slack webhook sender.
func NewSlackSender() *SlackSender {
	return &SlackSender{client: newHTTPClient()}
}

func (s *SlackSender) Type() model.ChannelType { return model.ChannelSlack }

func (s *SlackSender) Send(ctx context.Context, alert model.CostAlert, config map[string]any) error {
	webhookURL, err := configString(config, "webhook_url")
	if err != nil {
		return fmt.Errorf("slack: %w", err)
	}

	service := alert.Service
	if service == "" {
		service = "all"
	}

	payload := slackPayload{
		Channel: optionalString(config, "channel"),
		Attachments: []slackAttachment{
			{
				Color: severityColor(alert.Severity),
				Title: alertTitle(alert),
				Text:  alert.Message,
				Fields: []slackField{
					{Title: "Provider", Value: alert.Provider, Short: true},
					{Title: "Service", Value: service, Short: true},
					{Title: "Current Value", Value: fmt.Sprintf("%.2f", alert.CurrentValue), Short: true},
					{Title: "Threshold", Value: fmt.Sprintf("%.2f", alert.ThresholdValue), Short: true},
					{Title: "Threshold ID", Value: alert.ThresholdID, Short: true},
					{Title: "Alert ID", Value: alert.ID, Short: true},
				},
				Footer: "Cloud Cost Monitor",
				Ts:     alert.Timestamp.Unix(),
			},
		},
	}
	if alert.Timestamp.IsZero() {
		payload.Attachments[0].Ts = time.Now().Unix()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send slack alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned status %d", resp.StatusCode)
	}
	return nil
}

type slackPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Attachments []slackAttachment `json:"attachments"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Text   string       `json:"text,omitempty"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	Ts     int64        `json:"ts"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}
