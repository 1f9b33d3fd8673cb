package monitor

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

var (
	ErrThresholdExists   = errors.New("threshold already exists")
	ErrThresholdNotFound = errors.New("threshold not found")
)

// Thresholds is the runtime set of alert thresholds, keyed by id.
type Thresholds struct {
	mu    sync.RWMutex
	items map[string]model.AlertThreshold
	order []string
}

// NewThresholds creates an empty registry.
func NewThresholds() *Thresholds {
	return &Thresholds{items: make(map[string]model.AlertThreshold)}
}

// Add validates and inserts a threshold.
func (r *Thresholds) Add(t model.AlertThreshold) error {
	if err := model.ValidateThreshold(t); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.ID]; exists {
		return fmt.Errorf("%w: %q", ErrThresholdExists, t.ID)
	}
	r.items[t.ID] = t
	r.order = append(r.order, t.ID)
	return nil
}

// Remove deletes a threshold and returns the removed definition.
func (r *Thresholds) Remove(id string) (model.AlertThreshold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return model.AlertThreshold{}, fmt.Errorf("%w: %q", ErrThresholdNotFound, id)
	}
	delete(r.items, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	return t, nil
}

// Update applies patch to an existing threshold. The patched threshold is
// validated before it replaces the old one.
func (r *Thresholds) Update(id string, patch model.ThresholdPatch) (model.AlertThreshold, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return model.AlertThreshold{}, fmt.Errorf("%w: %q", ErrThresholdNotFound, id)
	}
	updated := patch.Apply(t)
	if err := model.ValidateThreshold(updated); err != nil {
		return model.AlertThreshold{}, err
	}
	r.items[id] = updated
	return updated, nil
}

// Get returns a threshold by id.
func (r *Thresholds) Get(id string) (model.AlertThreshold, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	return t, ok
}

// List returns all thresholds in insertion order.
func (r *Thresholds) List() []model.AlertThreshold {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.AlertThreshold, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

// Len returns the number of thresholds.
func (r *Thresholds) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
