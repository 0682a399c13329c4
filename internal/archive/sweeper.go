package archive

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Sweeper drives the periodic archival of finalized requests. The sweep
// function is injected so the cron HTTP endpoint can reuse the same code
// path; it returns how many records it archived.
type Sweeper struct {
	interval time.Duration
	sweepFn  func(context.Context) (int64, error)

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(interval time.Duration, sweepFn func(context.Context) (int64, error)) (*Sweeper, error) {
	if interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}
	if sweepFn == nil {
		return nil, errors.New("sweep function is required")
	}
	return &Sweeper{
		interval: interval,
		sweepFn:  sweepFn,
		done:     make(chan struct{}),
	}, nil
}

// Start launches the sweep loop. It sweeps once immediately, then on every
// interval until Stop. Returns false if already running.
func (s *Sweeper) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	go s.loop(ctx)
	return true
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("archival sweeper running", "interval", s.interval.String())

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			slog.Info("archival sweeper stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// Stop halts the loop and waits for an in-flight sweep to finish. Returns
// false if not running.
func (s *Sweeper) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	slog.Info("archival sweeper stopped")
	return true
}

func (s *Sweeper) IsRunning() bool {
	return s.running.Load()
}

// sweep runs one pass. A panic in the sweep function must not take down the
// loop with it.
func (s *Sweeper) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("archival sweep panicked", "panic", r)
		}
	}()

	start := time.Now()
	archived, err := s.sweepFn(ctx)
	if err != nil {
		slog.Error("archival sweep failed", "error", err)
		return
	}
	if archived > 0 {
		slog.Info("archived finalized requests", "count", archived, "duration_ms", time.Since(start).Milliseconds())
	}
}
