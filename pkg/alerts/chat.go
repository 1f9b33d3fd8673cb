package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// TeamsSender posts alerts to a Microsoft Teams incoming webhook as a
// MessageCard. Config: webhook_url (required).
type TeamsSender struct {
	client *http.Client
}

// NewTeamsSender creates a Teams webhook sender.
func NewTeamsSender() *TeamsSender {
	return &TeamsSender{client: newHTTPClient()}
}

func (t *TeamsSender) Type() model.ChannelType { return model.ChannelTeams }

func (t *TeamsSender) Send(ctx context.Context, alert model.CostAlert, config map[string]any) error {
	webhookURL, err := configString(config, "webhook_url")
	if err != nil {
		return fmt.Errorf("teams: %w", err)
	}

	card := teamsCard{
		Type:       "MessageCard",
		Context:    "https://schema.org/extensions",
		ThemeColor: strings.TrimPrefix(severityColor(alert.Severity), "#"),
		Summary:    alertTitle(alert),
		Sections: []teamsSection{
			{
				ActivityTitle: alertTitle(alert),
				Text:          alert.Message,
				Facts: []teamsFact{
					{Name: "Provider", Value: alert.Provider},
					{Name: "Service", Value: alert.Service},
					{Name: "Current Value", Value: fmt.Sprintf("%.2f", alert.CurrentValue)},
					{Name: "Threshold", Value: fmt.Sprintf("%.2f", alert.ThresholdValue)},
				},
			},
		},
	}

	return postJSON(ctx, t.client, "teams", webhookURL, card)
}

type teamsCard struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections"`
}

type teamsSection struct {
	ActivityTitle string      `json:"activityTitle"`
	Text          string      `json:"text"`
	Facts         []teamsFact `json:"facts"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DiscordSender posts alerts to a Discord webhook as an embed.
// Config: webhook_url (required), username (optional).
type DiscordSender struct {
	client *http.Client
}

// NewDiscordSender creates a Discord webhook sender.
func NewDiscordSender() *DiscordSender {
	return &DiscordSender{client: newHTTPClient()}
}

func (d *DiscordSender) Type() model.ChannelType { return model.ChannelDiscord }

func (d *DiscordSender) Send(ctx context.Context, alert model.CostAlert, config map[string]any) error {
	webhookURL, err := configString(config, "webhook_url")
	if err != nil {
		return fmt.Errorf("discord: %w", err)
	}

	color, _ := strconv.ParseInt(strings.TrimPrefix(severityColor(alert.Severity), "#"), 16, 64)
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	payload := discordPayload{
		Username: optionalString(config, "username"),
		Embeds: []discordEmbed{
			{
				Title:       alertTitle(alert),
				Description: alert.Message,
				Color:       int(color),
				Timestamp:   ts.UTC().Format(time.RFC3339),
				Fields: []discordField{
					{Name: "Provider", Value: alert.Provider, Inline: true},
					{Name: "Current Value", Value: fmt.Sprintf("%.2f", alert.CurrentValue), Inline: true},
					{Name: "Threshold", Value: fmt.Sprintf("%.2f", alert.ThresholdValue), Inline: true},
				},
			},
		},
	}

	return postJSON(ctx, d.client, "discord", webhookURL, payload)
}

type discordPayload struct {
	Username string         `json:"username,omitempty"`
	Embeds   []discordEmbed `json:"embeds"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Timestamp   string         `json:"timestamp"`
	Fields      []discordField `json:"fields"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func postJSON(ctx context.Context, client *http.Client, name, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s alert: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d", name, resp.StatusCode)
	}
	return nil
}
