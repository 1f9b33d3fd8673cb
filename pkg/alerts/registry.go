package alerts

import (
	"fmt"
	"sync"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// SenderRegistry maps channel types to their senders.
type SenderRegistry struct {
	mu      sync.RWMutex
	senders map[model.ChannelType]Sender
}

// NewSenderRegistry creates an empty registry.
func NewSenderRegistry() *SenderRegistry {
	return &SenderRegistry{senders: make(map[model.ChannelType]Sender)}
}

// DefaultSenders returns a registry with every built-in HTTP sender.
// EMAIL and SMS have no built-in sender.
func DefaultSenders() *SenderRegistry {
	r := NewSenderRegistry()
	for _, s := range []Sender{NewSlackSender(), NewWebhookSender(), NewTeamsSender(), NewDiscordSender()} {
		_ = r.Register(s)
	}
	return r
}

// Register adds a sender for its channel type.
func (r *SenderRegistry) Register(s Sender) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.senders[s.Type()]; exists {
		return fmt.Errorf("sender for %s already registered", s.Type())
	}
	r.senders[s.Type()] = s
	return nil
}

// Get returns the sender for a channel type.
func (r *SenderRegistry) Get(t model.ChannelType) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.senders[t]
	return s, ok
}
