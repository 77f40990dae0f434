package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_NilStoreFallsThroughToLoader(t *testing.T) {
	t.Parallel()

	var store *Store
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "direct", nil
	}

	for i := 0; i < 3; i++ {
		v, err := store.GetOrLoad(context.Background(), "k", loader)
		if err != nil {
			t.Fatalf("GetOrLoad on nil store: %v", err)
		}
		if v != "direct" {
			t.Fatalf("unexpected value: %v", v)
		}
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("nil store must load every time, got %d calls", got)
	}

	// Writers and invalidation are no-ops, not panics.
	store.Set(context.Background(), "k", "v")
	store.Delete(context.Background(), "k")
	store.DeletePrefix(context.Background(), "k")
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatal("nil store must never report a hit")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "table:liga-1:2025-26:full", "a")
	store.Set(ctx, "stats:liga-1:2025-26:club:club-a", "b")
	store.Set(ctx, "table:liga-2:2025-26:full", "c")

	store.DeletePrefix(ctx, "table:liga-1:2025-26:")

	if _, ok := store.Get(ctx, "table:liga-1:2025-26:full"); ok {
		t.Fatal("prefixed entry survived invalidation")
	}
	if _, ok := store.Get(ctx, "stats:liga-1:2025-26:club:club-a"); !ok {
		t.Fatal("unrelated prefix was invalidated")
	}
	if _, ok := store.Get(ctx, "table:liga-2:2025-26:full"); !ok {
		t.Fatal("other league was invalidated")
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.SetTTL(ctx, "short", "v", 10*time.Millisecond)
	if _, ok := store.Get(ctx, "short"); !ok {
		t.Fatal("fresh entry must be readable")
	}

	time.Sleep(25 * time.Millisecond)
	if _, ok := store.Get(ctx, "short"); ok {
		t.Fatal("expired entry must not be served")
	}
}

func TestStore_LoaderErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	failing := func(context.Context) (any, error) {
		calls.Add(1)
		return nil, errUnexpectedValue
	}

	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatal("expected loader error")
	}
	if _, err := store.GetOrLoad(context.Background(), "k", failing); err == nil {
		t.Fatal("expected loader error on second call")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("errors must not be memoized: got %d calls want 2", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
