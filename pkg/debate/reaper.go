package debate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/arguelab/sparr/internal/observability"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const (
	DefaultReapSchedule = "@every 5m"
	DefaultMaxIdle      = 60 * time.Minute
)

// Reaper ends debates that have been idle past a cutoff. Sessions are never
// evicted by the manager itself, so without a reaper (or an equivalent
// external caller of EndDebate) abandoned debates accumulate forever.
type Reaper struct {
	manager  *Manager
	schedule string
	maxIdle  time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewReaper creates a reaper with the given cron schedule and idle cutoff.
func NewReaper(manager *Manager, schedule string, maxIdle time.Duration) *Reaper {
	if schedule == "" {
		schedule = DefaultReapSchedule
	}
	if maxIdle <= 0 {
		maxIdle = DefaultMaxIdle
	}
	return &Reaper{
		manager:  manager,
		schedule: schedule,
		maxIdle:  maxIdle,
	}
}

// Start begins the periodic sweep.
func (r *Reaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("reaper is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() {
		r.Sweep()
	}); err != nil {
		return fmt.Errorf("invalid reaper schedule %q: %w", r.schedule, err)
	}
	c.Start()

	r.cron = c
	r.running = true

	log.Info().
		Str("schedule", r.schedule).
		Dur("max_idle", r.maxIdle).
		Msg("Debate reaper started")

	return nil
}

// Stop halts the periodic sweep, waiting for a sweep in progress.
func (r *Reaper) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("reaper is not running")
	}

	<-r.cron.Stop().Done()
	r.cron = nil
	r.running = false

	log.Info().Msg("Debate reaper stopped")
	return nil
}

// Sweep ends every debate idle past the cutoff and returns how many were
// reaped. Safe to call directly.
func (r *Reaper) Sweep() int {
	cutoff := time.Now().Add(-r.maxIdle)
	reaped := 0

	for _, entry := range r.manager.store.List() {
		if entry.LastActive.After(cutoff) {
			continue
		}
		_, err := r.manager.EndDebate(context.Background(), entry.DebateID)
		if errors.Is(err, ErrNotFound) {
			// Ended by its owner between listing and now.
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("debate_id", entry.DebateID).Msg("Failed to reap idle debate")
			continue
		}
		reaped++
		observability.RecordReapedDebate()
		log.Info().Str("debate_id", entry.DebateID).Msg("Reaped idle debate")
	}

	return reaped
}

// IsRunning reports whether the reaper is active.
func (r *Reaper) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
