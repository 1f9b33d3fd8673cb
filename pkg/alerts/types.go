package alerts

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

const defaultHTTPTimeout = 10 * time.Second

// Sender delivers an alert over one channel transport.
type Sender interface {
	// Type returns the channel type this sender serves.
	Type() model.ChannelType

	// Send delivers an alert using the channel's config map.
	// Implementations must be safe for concurrent use.
	Send(ctx context.Context, alert model.CostAlert, config map[string]any) error
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// configString reads a required string key from a channel config.
func configString(config map[string]any, key string) (string, error) {
	v, _ := config[key].(string)
	if v == "" {
		return "", fmt.Errorf("missing %q in channel config", key)
	}
	return v, nil
}

// optionalString reads a string key, returning "" when absent.
func optionalString(config map[string]any, key string) string {
	v, _ := config[key].(string)
	return v
}

func severityColor(s model.Severity) string {
	switch s {
	case model.SeverityMedium:
		return "#ff9900"
	case model.SeverityHigh:
		return "#ff0000"
	case model.SeverityCritical:
		return "#cc0000"
	default:
		return "#36a64f"
	}
}

func alertTitle(alert model.CostAlert) string {
	return fmt.Sprintf("Cost Monitor: %s alert", alert.Severity)
}
