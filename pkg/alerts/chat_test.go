package alerts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/alerts"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamsSender_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := alerts.NewTeamsSender()
	assert.Equal(t, model.ChannelTeams, s.Type())

	err := s.Send(context.Background(), testAlert(model.SeverityCritical), map[string]any{"webhook_url": server.URL})
	require.NoError(t, err)
	assert.Equal(t, "MessageCard", received["@type"])
	assert.Equal(t, "cc0000", received["themeColor"])
}

func TestDiscordSender_Send(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	s := alerts.NewDiscordSender()
	assert.Equal(t, model.ChannelDiscord, s.Type())

	err := s.Send(context.Background(), testAlert(model.SeverityMedium), map[string]any{
		"webhook_url": server.URL,
		"username":    "cost-bot",
	})
	require.NoError(t, err)
	assert.Equal(t, "cost-bot", received["username"])
	embeds, ok := received["embeds"].([]any)
	require.True(t, ok)
	assert.Len(t, embeds, 1)
}

func TestDiscordSender_Send_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := alerts.NewDiscordSender().Send(context.Background(), testAlert(model.SeverityLow), map[string]any{"webhook_url": server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
