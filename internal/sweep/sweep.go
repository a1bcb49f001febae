// Package sweep runs the tracker's background scan. The sweeper is the only
// writer of derived state: on every pass it rolls completed recurring tasks
// into their next cycle, then recomputes the alert set from scratch.
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wilkenstelisma/Work-Tracker-SN/internal/alert"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/model"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/task"
	"github.com/wilkenstelisma/Work-Tracker-SN/internal/telemetry"
)

const DefaultInterval = 15 * time.Minute

type Sweeper struct {
	tasks     task.Repo
	dismissed *alert.DismissalStore
	metrics   *telemetry.Metrics
	interval  time.Duration
	logger    zerolog.Logger

	// changed wakes the loop early after a mutation; buffered so notifiers
	// never block.
	changed chan struct{}

	mu       sync.RWMutex
	alerts   []model.AlertItem
	problems []alert.DataError
	lastRun  time.Time
}

func New(tasks task.Repo, dismissed *alert.DismissalStore, metrics *telemetry.Metrics, interval time.Duration, logger zerolog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		tasks:     tasks,
		dismissed: dismissed,
		metrics:   metrics,
		interval:  interval,
		logger:    logger.With().Str("component", "sweeper").Logger(),
		changed:   make(chan struct{}, 1),
		alerts:    []model.AlertItem{},
		problems:  []alert.DataError{},
	}
}

// Start runs the sweep loop until ctx is cancelled. One sweep runs
// immediately so the alert snapshot is populated before the first request.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.Sweep(time.Now())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("sweep loop stopped")
				return
			case <-ticker.C:
				s.Sweep(time.Now())
			case <-s.changed:
				s.Sweep(time.Now())
			}
		}
	}()
}

// NotifyChange requests an early sweep. Safe to call from any goroutine;
// never blocks.
func (s *Sweeper) NotifyChange() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

// Sweep runs one pass: regenerate recurring tasks, then rebuild the alert
// snapshot. Tasks whose regeneration fails are skipped and logged; one bad
// task never stops the pass.
func (s *Sweeper) Sweep(now time.Time) {
	started := time.Now()

	tasks, err := s.tasks.List(task.ListFilter{})
	if err != nil {
		s.logger.Error().Err(err).Msg("sweep: listing tasks failed")
		return
	}

	regenerated := 0
	for _, t := range tasks {
		if !task.ShouldRegenerate(t) {
			continue
		}
		p, err := task.BuildRecurrenceUpdate(t, now)
		if err != nil {
			s.logger.Warn().Err(err).Str("task", string(t.ID)).Msg("sweep: skipping recurrence")
			continue
		}
		if _, err := s.tasks.Update(t.ID, p); err != nil {
			s.logger.Error().Err(err).Str("task", string(t.ID)).Msg("sweep: recurrence update not saved")
			s.metrics.RecordPersistenceFailure("tasks")
			continue
		}
		regenerated++
	}
	if regenerated > 0 {
		s.metrics.TasksRegenerated.Add(float64(regenerated))
		// Re-list so the alert scan sees the new cycles, not the completed
		// tasks they replaced.
		tasks, err = s.tasks.List(task.ListFilter{})
		if err != nil {
			s.logger.Error().Err(err).Msg("sweep: re-listing tasks failed")
			return
		}
	}

	alerts, problems := alert.ComputeAlerts(tasks, now)
	s.metrics.DataErrorsTotal.Add(float64(len(problems)))
	for _, p := range problems {
		s.logger.Warn().Str("task", string(p.TaskID)).Str("field", p.Field).Str("value", p.Value).Msg("sweep: bad date skipped")
	}

	s.mu.Lock()
	s.alerts = alerts
	s.problems = problems
	s.lastRun = now
	s.mu.Unlock()

	s.publishAlertGauges(alerts)
	s.metrics.SweepsTotal.Inc()
	s.metrics.SweepDuration.Observe(time.Since(started).Seconds())

	s.logger.Debug().
		Int("tasks", len(tasks)).
		Int("regenerated", regenerated).
		Int("alerts", len(alerts)).
		Int("problems", len(problems)).
		Msg("sweep complete")
}

// publishAlertGauges sets the per-type active alert gauges from the
// non-dismissed view, zeroing types with no alerts.
func (s *Sweeper) publishAlertGauges(alerts []model.AlertItem) {
	counts := map[model.AlertType]int{
		model.AlertOverdue:          0,
		model.AlertDueToday:         0,
		model.AlertAtRisk:           0,
		model.AlertMilestoneDueSoon: 0,
	}
	for _, a := range s.dismissed.Filter(alerts) {
		counts[a.Type]++
	}
	for typ, n := range counts {
		s.metrics.AlertsActive.WithLabelValues(string(typ)).Set(float64(n))
	}
}

// Alerts returns the non-dismissed view of the last snapshot.
func (s *Sweeper) Alerts() []model.AlertItem {
	s.mu.RLock()
	snapshot := s.alerts
	s.mu.RUnlock()
	return s.dismissed.Filter(snapshot)
}

// Problems returns the data errors found during the last sweep.
func (s *Sweeper) Problems() []alert.DataError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.problems
}

// LastRun reports when the last sweep finished; zero before the first one.
func (s *Sweeper) LastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun
}
