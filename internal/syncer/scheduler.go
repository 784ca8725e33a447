package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler drives the [Coordinator] periodically and on demand.
//
// The scheduler runs one cycle immediately on start, then ticks at the
// configured interval. Manual triggers and interval changes are
// delivered through channels so the loop owns all timing state.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	coordinator *Coordinator
	interval    time.Duration
	logger      *slog.Logger

	trigger    chan struct{}
	intervalCh chan time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewScheduler creates a sync [Scheduler].
//
// Parameters:
//   - coordinator: The coordinator to run cycles on
//   - interval: Time between periodic cycles
//   - logger: Logger for scheduler events
//
// The scheduler must be started with [Scheduler.Start] and stopped
// with [Scheduler.Stop].
func NewScheduler(coordinator *Coordinator, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		coordinator: coordinator,
		interval:    interval,
		logger:      logger,
		trigger:     make(chan struct{}, 1),
		intervalCh:  make(chan time.Duration, 1),
	}
}

// Start begins the sync loop in a background goroutine.
//
// Start is non-blocking and returns immediately. The scheduler will:
//  1. Run one sync cycle immediately
//  2. Run a cycle on every tick of the configured interval
//  3. Run a cycle on every [Scheduler.TriggerSync] call
//  4. Continue until [Scheduler.Stop] is called or the context is cancelled
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()

		s.coordinator.Sync(loopCtx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				s.coordinator.Sync(loopCtx)
			case <-s.trigger:
				s.coordinator.Sync(loopCtx)
			case interval := <-s.intervalCh:
				ticker.Reset(interval)
				s.logger.Info("sync interval updated", "interval", interval.String())
			}
		}
	}()
}

// TriggerSync requests an immediate sync cycle.
//
// TriggerSync is non-blocking and fire-and-forget. A trigger arriving
// while one is already pending coalesces into a single cycle.
func (s *Scheduler) TriggerSync() {
	select {
	case s.trigger <- struct{}{}:
	default:
		// a trigger is already pending
	}
}

// SetInterval reschedules the periodic trigger.
//
// The new interval takes effect from now; a pending reschedule that was
// not yet consumed is replaced.
func (s *Scheduler) SetInterval(interval time.Duration) {
	if interval <= 0 {
		return
	}
	for {
		select {
		case s.intervalCh <- interval:
			return
		default:
			// drop the stale pending value and retry
			select {
			case <-s.intervalCh:
			default:
			}
		}
	}
}

// Stop halts the scheduler and waits for the loop to exit.
//
// Stop is idempotent and safe to call multiple times. Calling Stop
// before Start is a safe no-op. An in-flight cycle is allowed to
// finish; its context is cancelled, so blocked fetches fail fast.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}
