package monitor

import (
	"sync"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
)

// Store is the in-memory time series of collected data points. Points are
// kept in append order, which is also timestamp order.
type Store struct {
	mu     sync.RWMutex
	points []model.CostDataPoint
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Append adds points in the order given.
func (s *Store) Append(points ...model.CostDataPoint) {
	if len(points) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, points...)
}

// Snapshot returns a copy of all points. Evaluation works on a snapshot so
// a concurrent append never shows up mid-tick.
func (s *Store) Snapshot() []model.CostDataPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CostDataPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of stored points.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// Prune drops points older than cutoff and returns how many were removed.
func (s *Store) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.points[:0]
	for _, p := range s.points {
		if !p.Timestamp.Before(cutoff) {
			kept = append(kept, p)
		}
	}
	removed := len(s.points) - len(kept)
	clear(s.points[len(kept):])
	s.points = kept
	return removed
}

// Window returns the points in [now-window, now] that match the optional
// provider and service filters.
func Window(points []model.CostDataPoint, now time.Time, window time.Duration, provider, service string) []model.CostDataPoint {
	start := now.Add(-window)
	var out []model.CostDataPoint
	for _, p := range points {
		if p.Timestamp.Before(start) || p.Timestamp.After(now) {
			continue
		}
		if provider != "" && p.Provider != provider {
			continue
		}
		if service != "" && p.Service != service {
			continue
		}
		out = append(out, p)
	}
	return out
}
