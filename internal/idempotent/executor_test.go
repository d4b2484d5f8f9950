package idempotent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/portx/internal/shared"
)

func newTestExecutor(t *testing.T, jobID string, store Store) (*Executor, *bytes.Buffer) {
	t.Helper()

	var buf bytes.Buffer
	exec := NewExecutor(jobID, store, shared.NewLogger(&buf))

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	exec.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return exec, &buf
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("runs producer once per key", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", NewMemoryStore())

		calls := 0
		fn := func() (string, error) {
			calls++
			return "dest-1", nil
		}

		first, err := exec.Execute(ctx, "album-1", "Summer", fn)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		second, err := exec.Execute(ctx, "album-1", "Summer", fn)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		if calls != 1 {
			t.Errorf("expected producer to run once, ran %d times", calls)
		}
		if first != "dest-1" || second != "dest-1" {
			t.Errorf("expected dest-1 twice, got %q and %q", first, second)
		}
	})

	t.Run("keys are scoped by job", func(t *testing.T) {
		store := NewMemoryStore()
		a, _ := newTestExecutor(t, "job-a", store)
		b, _ := newTestExecutor(t, "job-b", store)

		if _, err := a.Execute(ctx, "album-1", "Summer", func() (string, error) { return "from-a", nil }); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		got, err := b.Execute(ctx, "album-1", "Summer", func() (string, error) { return "from-b", nil })
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if got != "from-b" {
			t.Errorf("expected separate job to run its own producer, got %q", got)
		}
	})

	t.Run("failure is recorded and returned", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", NewMemoryStore())
		boom := errors.New("connection reset")

		_, err := exec.Execute(ctx, "album-1", "Summer", func() (string, error) { return "", boom })
		if !errors.Is(err, boom) {
			t.Fatalf("expected producer error, got %v", err)
		}

		if exec.IsKeyCached(ctx, "album-1") {
			t.Error("failed key must not be cached")
		}

		details, _ := exec.Errors(ctx)
		if len(details) != 1 || details[0].Key != "album-1" || details[0].Label != "Summer" || details[0].Message != "connection reset" {
			t.Errorf("unexpected error details: %+v", details)
		}
	})

	t.Run("later success clears earlier error", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", NewMemoryStore())

		exec.Execute(ctx, "album-1", "Summer", func() (string, error) { return "", errors.New("timeout") })
		if _, err := exec.Execute(ctx, "album-1", "Summer", func() (string, error) { return "dest-1", nil }); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		details, _ := exec.Errors(ctx)
		if len(details) != 0 {
			t.Errorf("expected errors to be cleared, got %+v", details)
		}
	})
}

func TestExecutor_ExecuteAndSwallowErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("swallows and logs failures", func(t *testing.T) {
		exec, logs := newTestExecutor(t, "job-1", NewMemoryStore())

		value, ok := exec.ExecuteAndSwallowErrors(ctx, "album-1", "Summer", func() (string, error) {
			return "", io.ErrUnexpectedEOF
		})
		if ok || value != "" {
			t.Errorf("expected no value, got %q ok=%v", value, ok)
		}
		if !strings.Contains(logs.String(), "import failed") {
			t.Errorf("expected failure to be logged, got %q", logs.String())
		}
	})

	t.Run("returns recorded value without running producer", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", NewMemoryStore())
		exec.ExecuteAndSwallowErrors(ctx, "album-1", "Summer", func() (string, error) { return "dest-1", nil })

		value, ok := exec.ExecuteAndSwallowErrors(ctx, "album-1", "Summer", func() (string, error) {
			t.Error("producer must not run for a cached key")
			return "", nil
		})
		if !ok || value != "dest-1" {
			t.Errorf("expected cached dest-1, got %q ok=%v", value, ok)
		}
	})

	t.Run("store lookup failure is swallowed", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", &failingStore{MemoryStore: NewMemoryStore()})

		_, ok := exec.ExecuteAndSwallowErrors(ctx, "album-1", "Summer", func() (string, error) {
			t.Error("producer must not run when the lookup fails")
			return "", nil
		})
		if ok {
			t.Error("expected ok=false when the store is unavailable")
		}
	})

	t.Run("record failure lands in the error log", func(t *testing.T) {
		exec, _ := newTestExecutor(t, "job-1", &failingRecordStore{MemoryStore: NewMemoryStore()})

		calls := 0
		_, ok := exec.ExecuteAndSwallowErrors(ctx, "album-1", "Summer", func() (string, error) {
			calls++
			return "dest-1", nil
		})
		if ok {
			t.Error("expected ok=false when the value cannot be recorded")
		}
		if calls != 1 {
			t.Errorf("expected producer to run once, ran %d times", calls)
		}
		if exec.IsKeyCached(ctx, "album-1") {
			t.Error("unrecorded key must not be cached")
		}

		details, _ := exec.Errors(ctx)
		if len(details) != 1 || details[0].Key != "album-1" || !strings.Contains(details[0].Message, "failed to record destination id dest-1") {
			t.Errorf("unexpected error details: %+v", details)
		}
	})
}

func TestExecutor_CachedValue(t *testing.T) {
	ctx := context.Background()
	exec, _ := newTestExecutor(t, "job-1", NewMemoryStore())

	if _, err := exec.CachedValue(ctx, "missing"); !errors.Is(err, shared.ErrKeyNotCached) {
		t.Errorf("expected ErrKeyNotCached, got %v", err)
	}

	exec.Execute(ctx, "album-1", "Summer", func() (string, error) { return "dest-1", nil })

	got, err := exec.CachedValue(ctx, "album-1")
	if err != nil || got != "dest-1" {
		t.Errorf("CachedValue() = %q, %v", got, err)
	}
	if exec.JobID() != "job-1" {
		t.Errorf("expected job-1, got %s", exec.JobID())
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("Record keeps first value", func(t *testing.T) {
		store.Record(ctx, "job-1", "k", "label", "first")
		store.Record(ctx, "job-1", "k", "label", "second")

		v, ok, _ := store.Get(ctx, "job-1", "k")
		if !ok || v != "first" {
			t.Errorf("expected first, got %q ok=%v", v, ok)
		}
	})

	t.Run("Errors ordered by occurrence", func(t *testing.T) {
		base := time.Now()
		store.RecordError(ctx, "job-1", ErrorDetail{Key: "b", OccurredAt: base.Add(time.Minute)})
		store.RecordError(ctx, "job-1", ErrorDetail{Key: "a", OccurredAt: base})
		store.RecordError(ctx, "job-2", ErrorDetail{Key: "c", OccurredAt: base})

		details, _ := store.Errors(ctx, "job-1")
		if len(details) != 2 || details[0].Key != "a" || details[1].Key != "b" {
			t.Errorf("unexpected errors: %+v", details)
		}
	})
}

type failingStore struct {
	*MemoryStore
}

func (f *failingStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, errors.New("database is locked")
}

type failingRecordStore struct {
	*MemoryStore
}

func (f *failingRecordStore) Record(context.Context, string, string, string, string) error {
	return errors.New("disk I/O error")
}
