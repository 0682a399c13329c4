package archive

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewValidatesArguments(t *testing.T) {
	if _, err := New(0, func(context.Context) (int64, error) { return 0, nil }); err == nil {
		t.Fatalf("expected error for zero interval")
	}
	if _, err := New(time.Second, nil); err == nil {
		t.Fatalf("expected error for nil tick function")
	}
}

func TestStartStopBasics(t *testing.T) {
	var calls atomic.Int64

	s, err := New(10*time.Millisecond, func(context.Context) (int64, error) {
		calls.Add(1)
		return 1, nil
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if !s.Start() {
		t.Fatalf("expected Start to return true")
	}
	if s.Start() {
		t.Fatalf("expected second Start to return false")
	}
	if !s.IsRunning() {
		t.Fatalf("expected running")
	}

	time.Sleep(50 * time.Millisecond)

	if !s.Stop() {
		t.Fatalf("expected Stop to return true")
	}
	if s.Stop() {
		t.Fatalf("expected second Stop to return false")
	}
	if calls.Load() < 2 {
		t.Fatalf("expected at least the immediate tick plus one interval, got %d", calls.Load())
	}
}

func TestDoesNotTickAfterStop(t *testing.T) {
	var calls atomic.Int64

	s, err := New(10*time.Millisecond, func(context.Context) (int64, error) {
		calls.Add(1)
		return 0, nil
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()

	before := calls.Load()
	time.Sleep(50 * time.Millisecond)
	if after := calls.Load(); after != before {
		t.Fatalf("expected no ticks after Stop; before=%d after=%d", before, after)
	}
}

func TestTickPanicIsRecovered(t *testing.T) {
	var calls atomic.Int64

	s, err := New(10*time.Millisecond, func(context.Context) (int64, error) {
		calls.Add(1)
		panic("sweep blew up")
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	if calls.Load() < 2 {
		t.Fatalf("expected sweeper to survive panics and keep ticking, got %d calls", calls.Load())
	}
}
