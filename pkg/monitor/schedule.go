package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule drives the engine's recurring tick. Ticks never overlap, and
// Stop waits for an in-flight tick to finish.
type Schedule interface {
	Start(tick func()) error
	Stop()
}

// IntervalSchedule ticks at a fixed interval.
type IntervalSchedule struct {
	interval time.Duration

	mu   sync.Mutex
	done chan struct{}
	wg   sync.WaitGroup
}

// NewIntervalSchedule creates a fixed-interval schedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{interval: interval}
}

func (s *IntervalSchedule) Start(tick func()) error {
	if s.interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", s.interval)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return fmt.Errorf("interval schedule already started")
	}
	done := make(chan struct{})
	s.done = done

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				// select picks randomly when Stop races the ticker.
				select {
				case <-done:
					return
				default:
				}
				tick()
			}
		}
	}()
	return nil
}

func (s *IntervalSchedule) Stop() {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(done)
	s.wg.Wait()
}

// CronSchedule ticks on a standard five-field cron expression.
type CronSchedule struct {
	spec string

	mu   sync.Mutex
	cron *cron.Cron
}

// NewCronSchedule validates spec and returns a schedule for it.
func NewCronSchedule(spec string) (*CronSchedule, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", spec, err)
	}
	return &CronSchedule{spec: spec}, nil
}

func (s *CronSchedule) Start(tick func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("cron schedule already started")
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.spec, tick); err != nil {
		return fmt.Errorf("schedule tick: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *CronSchedule) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return
	}
	<-c.Stop().Done()
}

// Next returns the next tick time after t.
func (s *CronSchedule) Next(t time.Time) time.Time {
	sched, err := cron.ParseStandard(s.spec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(t)
}
