package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/clubcms/standings-engine/internal/domain/recalc"
	"github.com/clubcms/standings-engine/internal/platform/logging"
	"github.com/clubcms/standings-engine/internal/platform/resilience"
)

// Recalculator is the job body the queue drives; in production it is the
// CalculationService pipeline.
type Recalculator interface {
	Recalculate(ctx context.Context, leagueID, season string) error
}

type QueueConfig struct {
	Workers     int
	MaxAttempts int
	Backoff     resilience.Backoff
	RunTimeout  time.Duration
}

func normalizeQueueConfig(cfg QueueConfig) QueueConfig {
	if cfg.Workers < 1 {
		cfg.Workers = 4
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	cfg.Backoff = resilience.NormalizeBackoff(cfg.Backoff)
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return cfg
}

type keyState int

const (
	stateIdle keyState = iota
	statePending
	stateRunning
)

type queueKey struct {
	LeagueID string
	Season   string
}

type keyEntry struct {
	state      keyState
	rerun      bool
	trigger    recalc.Trigger
	enqueuedAt time.Time
	failed     bool
	lastError  string
}

// RecalcQueue debounces and serializes recalculation per (league, season).
// Within one key runs are totally ordered: an enqueue while pending is a
// no-op, an enqueue while running requests exactly one coalesced rerun after
// the in-flight run completes. Different keys run in parallel on the pool.
type RecalcQueue struct {
	mu     sync.Mutex
	keys   map[queueKey]*keyEntry
	pool   *ants.Pool
	closed bool

	calc    Recalculator
	runRepo recalc.Repository
	cfg     QueueConfig
	logger  *logging.Logger

	wg    sync.WaitGroup
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRecalcQueue(calc Recalculator, runRepo recalc.Repository, cfg QueueConfig, logger *logging.Logger) (*RecalcQueue, error) {
	if calc == nil {
		return nil, fmt.Errorf("recalculator is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg = normalizeQueueConfig(cfg)

	p, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("create recalc worker pool: %w", err)
	}

	return &RecalcQueue{
		keys:    make(map[queueKey]*keyEntry),
		pool:    p,
		calc:    calc,
		runRepo: runRepo,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// Enqueue requests a recalculation for the key. It never blocks on the run
// and never reports run errors back: fire-and-forget from the caller's
// perspective, as the match-lifecycle path requires.
func (q *RecalcQueue) Enqueue(leagueID, season string) {
	q.schedule(leagueID, season, recalc.TriggerEvent)
}

// Force schedules an immediate recalculation for operators. Unlike Enqueue
// it marks a rerun even for an already pending key, guaranteeing a fresh run
// strictly after this call. A running key is still never doubled.
func (q *RecalcQueue) Force(leagueID, season string) error {
	if strings.TrimSpace(leagueID) == "" || strings.TrimSpace(season) == "" {
		return fmt.Errorf("%w: league id and season are required", ErrInvalidInput)
	}
	if !q.schedule(leagueID, season, recalc.TriggerForce) {
		return fmt.Errorf("%w: recalculation queue is closed", ErrDependencyUnavailable)
	}
	return nil
}

func (q *RecalcQueue) schedule(leagueID, season string, trigger recalc.Trigger) bool {
	leagueID = strings.TrimSpace(leagueID)
	season = strings.TrimSpace(season)
	if leagueID == "" || season == "" {
		return false
	}
	key := queueKey{LeagueID: leagueID, Season: season}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}

	e := q.keys[key]
	if e == nil {
		e = &keyEntry{}
		q.keys[key] = e
	}

	start := false
	switch e.state {
	case stateIdle:
		e.state = statePending
		e.trigger = trigger
		e.enqueuedAt = q.now().UTC()
		e.failed = false
		start = true
	case statePending:
		if trigger == recalc.TriggerForce {
			e.trigger = recalc.TriggerForce
		}
		// Already scheduled; coalesce.
	case stateRunning:
		e.rerun = true
		if trigger == recalc.TriggerForce {
			e.trigger = recalc.TriggerForce
		}
	}
	q.mu.Unlock()

	if !start {
		return true
	}

	q.wg.Add(1)
	if err := q.pool.Submit(func() {
		defer q.wg.Done()
		q.runKey(key)
	}); err != nil {
		q.wg.Done()
		q.mu.Lock()
		e.state = stateIdle
		q.mu.Unlock()
		q.logger.Error("submit recalc job failed",
			"league_id", key.LeagueID, "season", key.Season, "error", err)
		return false
	}

	return true
}

// runKey owns the key until it goes idle. The loop re-enters pending when a
// rerun was requested mid-run, so a burst of N enqueues costs at most one
// additional run after the in-flight one.
func (q *RecalcQueue) runKey(key queueKey) {
	for {
		q.mu.Lock()
		e := q.keys[key]
		e.state = stateRunning
		e.rerun = false
		trigger := e.trigger
		enqueuedAt := e.enqueuedAt
		q.mu.Unlock()

		failed, lastErr := q.runWithRetries(key, trigger, enqueuedAt)

		q.mu.Lock()
		e.failed = failed
		e.lastError = lastErr
		if e.rerun && !q.closed {
			e.state = statePending
			e.rerun = false
			e.enqueuedAt = q.now().UTC()
			q.mu.Unlock()
			continue
		}
		e.state = stateIdle
		q.mu.Unlock()
		return
	}
}

func (q *RecalcQueue) runWithRetries(key queueKey, trigger recalc.Trigger, enqueuedAt time.Time) (failed bool, lastErr string) {
	runID := fmt.Sprintf("%s-%s-%d", key.LeagueID, key.Season, q.now().UnixNano())

	// The audit trail opens with the debounce phase: a pending record
	// carrying the enqueue time, upgraded in place once the attempt starts.
	q.recordRun(recalc.JobRun{
		RunID:      runID,
		LeagueID:   key.LeagueID,
		Season:     key.Season,
		Trigger:    trigger,
		Status:     recalc.StatusPending,
		Attempt:    1,
		EnqueuedAt: enqueuedAt,
	})

	for attempt := 1; ; attempt++ {
		attemptTrigger := trigger
		if attempt > 1 {
			attemptTrigger = recalc.TriggerRetry
		}

		start := q.now().UTC()
		q.recordRun(recalc.JobRun{
			RunID:      runID,
			LeagueID:   key.LeagueID,
			Season:     key.Season,
			Trigger:    attemptTrigger,
			Status:     recalc.StatusRunning,
			Attempt:    attempt,
			EnqueuedAt: enqueuedAt,
			StartedAt:  start,
		})

		traceID, spanID, err := q.runOnce(key)
		finished := q.now().UTC()
		run := recalc.JobRun{
			RunID:      runID,
			LeagueID:   key.LeagueID,
			Season:     key.Season,
			Trigger:    attemptTrigger,
			Attempt:    attempt,
			EnqueuedAt: enqueuedAt,
			StartedAt:  start,
			FinishedAt: finished,
			DurationMs: finished.Sub(start).Milliseconds(),
			TraceID:    traceID,
			SpanID:     spanID,
		}

		if err == nil {
			run.Status = recalc.StatusDone
			q.recordRun(run)
			return false, ""
		}

		run.Status = recalc.StatusFailed
		run.LastError = err.Error()
		q.recordRun(run)

		if !IsTransient(err) || attempt >= q.cfg.MaxAttempts {
			q.logger.Error("recalculation failed",
				"league_id", key.LeagueID, "season", key.Season,
				"attempt", attempt, "error", err)
			return true, err.Error()
		}

		delay := q.cfg.Backoff.Delay(attempt)
		q.logger.Warn("recalculation attempt failed, retrying",
			"league_id", key.LeagueID, "season", key.Season,
			"attempt", attempt, "delay", delay, "error", err)
		if sleepErr := q.sleep(context.Background(), delay); sleepErr != nil {
			return true, err.Error()
		}
	}
}

func (q *RecalcQueue) runOnce(key queueKey) (traceID, spanID string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.RunTimeout)
	defer cancel()

	// Each run is its own trace root; the audit record links back to it.
	ctx, span := usecaseTracer.Start(ctx, "usecase.RecalcQueue.run")
	defer span.End()
	traceID, spanID = traceMetaFromContext(ctx)

	err = q.calc.Recalculate(ctx, key.LeagueID, key.Season)
	if err != nil && ctx.Err() != nil {
		// A timed-out run is retryable; the previous persisted table stays
		// authoritative until a full run succeeds.
		return traceID, spanID, MarkTransient(fmt.Errorf("recalculation timed out after %s: %w", q.cfg.RunTimeout, err))
	}
	return traceID, spanID, err
}

func (q *RecalcQueue) recordRun(run recalc.JobRun) {
	if q.runRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.runRepo.RecordRun(ctx, run); err != nil {
		q.logger.Warn("record job run failed",
			"run_id", run.RunID, "status", run.Status, "error", err)
	}
}

// QueueStats is a point-in-time snapshot for the operator dashboard.
type QueueStats struct {
	Pending    int
	Running    int
	FailedKeys map[string]string
}

func (q *RecalcQueue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := QueueStats{FailedKeys: make(map[string]string)}
	for key, e := range q.keys {
		switch e.state {
		case statePending:
			stats.Pending++
		case stateRunning:
			stats.Running++
		}
		if e.failed {
			stats.FailedKeys[key.LeagueID+":"+key.Season] = e.lastError
		}
	}
	return stats
}

// Close stops accepting work and waits for in-flight runs up to the deadline.
func (q *RecalcQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		q.pool.Release()
		return fmt.Errorf("recalc queue drain: %w", ctx.Err())
	}

	q.pool.Release()
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
