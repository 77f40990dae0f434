package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clubcms/standings-engine/internal/domain/recalc"
	"github.com/clubcms/standings-engine/internal/infrastructure/repository/memory"
	"github.com/clubcms/standings-engine/internal/platform/resilience"
)

// stubRecalculator lets tests control run outcomes and observe run counts
// per key.
type stubRecalculator struct {
	mu      sync.Mutex
	counts  map[string]int
	results map[string][]error
	block   chan struct{}
	started chan struct{}
}

func newStubRecalculator() *stubRecalculator {
	return &stubRecalculator{
		counts:  make(map[string]int),
		results: make(map[string][]error),
	}
}

func (s *stubRecalculator) Recalculate(_ context.Context, leagueID, season string) error {
	key := leagueID + ":" + season

	s.mu.Lock()
	s.counts[key]++
	var err error
	if queue := s.results[key]; len(queue) > 0 {
		err = queue[0]
		s.results[key] = queue[1:]
	}
	started := s.started
	block := s.block
	s.mu.Unlock()

	if started != nil {
		select {
		case started <- struct{}{}:
		default:
		}
	}
	if block != nil {
		<-block
	}
	return err
}

func (s *stubRecalculator) count(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key]
}

func (s *stubRecalculator) failNext(key string, errs ...error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[key] = append(s.results[key], errs...)
}

func newTestQueue(t *testing.T, calc Recalculator, runRepo recalc.Repository) *RecalcQueue {
	t.Helper()

	q, err := NewRecalcQueue(calc, runRepo, QueueConfig{
		Workers:     4,
		MaxAttempts: 3,
		Backoff:     resilience.Backoff{Base: time.Millisecond, Max: 5 * time.Millisecond},
		RunTimeout:  time.Second,
	}, nil)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	return q
}

func drainQueue(t *testing.T, q *RecalcQueue) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := q.Close(ctx); err != nil {
		t.Fatalf("close queue: %v", err)
	}
}

func TestRecalcQueue_RunsEnqueuedKey(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	q := newTestQueue(t, calc, nil)

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	if got := calc.count("liga-1:2025-26"); got != 1 {
		t.Fatalf("run count: got=%d want=1", got)
	}
}

func TestRecalcQueue_CoalescesBurstIntoAtMostOneRerun(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	calc.block = make(chan struct{})
	calc.started = make(chan struct{}, 1)
	q := newTestQueue(t, calc, nil)

	q.Enqueue("liga-1", "2025-26")
	<-calc.started // first run is now in flight

	for i := 0; i < 25; i++ {
		q.Enqueue("liga-1", "2025-26")
	}
	close(calc.block)
	drainQueue(t, q)

	got := calc.count("liga-1:2025-26")
	if got < 1 || got > 2 {
		t.Fatalf("burst must coalesce to the in-flight run plus at most one rerun, got %d runs", got)
	}
}

func TestRecalcQueue_KeysRunIndependently(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	q := newTestQueue(t, calc, nil)

	q.Enqueue("liga-1", "2025-26")
	q.Enqueue("liga-2", "2025-26")
	q.Enqueue("liga-1", "2024-25")
	drainQueue(t, q)

	for _, key := range []string{"liga-1:2025-26", "liga-2:2025-26", "liga-1:2024-25"} {
		if got := calc.count(key); got != 1 {
			t.Fatalf("key %s: run count got=%d want=1", key, got)
		}
	}
}

func TestRecalcQueue_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	calc.failNext("liga-1:2025-26",
		MarkTransient(fmt.Errorf("db gone")),
		MarkTransient(fmt.Errorf("db still gone")),
	)
	runs := memory.NewJobRunRepository()
	q := newTestQueue(t, calc, runs)

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	if got := calc.count("liga-1:2025-26"); got != 3 {
		t.Fatalf("run count: got=%d want=3 (two transient failures, then success)", got)
	}

	last, ok, err := runs.LastSuccessfulRun(context.Background(), "liga-1", "2025-26")
	if err != nil || !ok {
		t.Fatalf("last successful run: ok=%t err=%v", ok, err)
	}
	if last.Attempt != 3 || last.Trigger != recalc.TriggerRetry {
		t.Fatalf("successful run: got attempt=%d trigger=%s want 3/retry", last.Attempt, last.Trigger)
	}
}

func TestRecalcQueue_DoesNotRetryPermanentErrors(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	calc.failNext("liga-1:2025-26", fmt.Errorf("blocked: %w", ErrConsistencyBlocked))
	q := newTestQueue(t, calc, nil)

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	if got := calc.count("liga-1:2025-26"); got != 1 {
		t.Fatalf("permanent error must not retry: got=%d runs", got)
	}

	stats := q.Stats()
	if _, failed := stats.FailedKeys["liga-1:2025-26"]; !failed {
		t.Fatalf("failed key missing from stats: %+v", stats)
	}
}

func TestRecalcQueue_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	calc.failNext("liga-1:2025-26",
		MarkTransient(fmt.Errorf("attempt 1")),
		MarkTransient(fmt.Errorf("attempt 2")),
		MarkTransient(fmt.Errorf("attempt 3")),
		MarkTransient(fmt.Errorf("attempt 4")),
	)
	q := newTestQueue(t, calc, nil)

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	if got := calc.count("liga-1:2025-26"); got != 3 {
		t.Fatalf("run count: got=%d want=3 (MaxAttempts)", got)
	}
}

func TestRecalcQueue_ForceAfterCloseFails(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	q := newTestQueue(t, calc, nil)
	drainQueue(t, q)

	if err := q.Force("liga-1", "2025-26"); !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestRecalcQueue_ForceRequiresScope(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	q := newTestQueue(t, calc, nil)
	defer drainQueue(t, q)

	if err := q.Force("", "2025-26"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecalcQueue_RecordsRunAudit(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	runs := memory.NewJobRunRepository()
	q := newTestQueue(t, calc, runs)

	if err := q.Force("liga-1", "2025-26"); err != nil {
		t.Fatalf("force: %v", err)
	}
	drainQueue(t, q)

	recorded := runs.Runs()
	if len(recorded) == 0 {
		t.Fatal("no job runs recorded")
	}
	final := recorded[len(recorded)-1]
	if final.Status != recalc.StatusDone || final.Trigger != recalc.TriggerForce {
		t.Fatalf("final run: got status=%s trigger=%s want done/force", final.Status, final.Trigger)
	}
	if final.DurationMs < 0 {
		t.Fatalf("duration must be non-negative, got %d", final.DurationMs)
	}
}

func TestRecalcQueue_AuditOpensWithPendingState(t *testing.T) {
	t.Parallel()

	calc := newStubRecalculator()
	runs := memory.NewJobRunRepository()
	q := newTestQueue(t, calc, runs)

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	recorded := runs.Runs()
	if len(recorded) < 3 {
		t.Fatalf("expected pending, running and done records, got %d", len(recorded))
	}

	pending := recorded[0]
	if pending.Status != recalc.StatusPending {
		t.Fatalf("first recorded state: got %s want %s", pending.Status, recalc.StatusPending)
	}
	if pending.EnqueuedAt.IsZero() || !pending.StartedAt.IsZero() {
		t.Fatalf("pending record must carry only the enqueue time: %+v", pending)
	}

	running := recorded[1]
	if running.Status != recalc.StatusRunning || running.RunID != pending.RunID || running.Attempt != pending.Attempt {
		t.Fatalf("running record must upgrade the pending one: %+v vs %+v", running, pending)
	}
}

func TestRecalcQueue_TimeoutIsTransient(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	calc := recalcFunc(func(ctx context.Context, leagueID, season string) error {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})

	q, err := NewRecalcQueue(calc, nil, QueueConfig{
		Workers:     1,
		MaxAttempts: 2,
		Backoff:     resilience.Backoff{Base: time.Millisecond, Max: time.Millisecond},
		RunTimeout:  20 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	q.Enqueue("liga-1", "2025-26")
	drainQueue(t, q)

	if got := calls.Load(); got != 2 {
		t.Fatalf("timed-out run must be retried: got=%d runs want=2", got)
	}
}

type recalcFunc func(ctx context.Context, leagueID, season string) error

func (f recalcFunc) Recalculate(ctx context.Context, leagueID, season string) error {
	return f(ctx, leagueID, season)
}
