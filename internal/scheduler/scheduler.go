// Package scheduler drives the periodic upstream sync: one goroutine, an
// immediate pass on Start, then one pass per interval until Stop.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"leadawaker/internal/logger"
)

// Job is one unit of periodic work. syncer.Service satisfies it.
type Job interface {
	Tick(ctx context.Context)
}

// JobFunc adapts a plain function to Job.
type JobFunc func(ctx context.Context)

func (f JobFunc) Tick(ctx context.Context) { f(ctx) }

// Status describes the scheduler for the admin sync endpoint.
type Status struct {
	Running      bool       `json:"running"`
	Interval     string     `json:"interval"`
	Passes       int64      `json:"passes"`
	Panics       int64      `json:"panics"`
	LastStarted  *time.Time `json:"last_started,omitempty"`
	LastFinished *time.Time `json:"last_finished,omitempty"`
	LastDuration string     `json:"last_duration,omitempty"`
}

type Scheduler struct {
	interval time.Duration
	job      Job
	log      logger.Logger

	running atomic.Bool
	passes  atomic.Int64
	panics  atomic.Int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	lastMu   sync.Mutex
	started  time.Time
	finished time.Time
}

// New builds a stopped scheduler. Each pass gets a deadline of one interval
// so a hung upstream cannot stack passes.
func New(interval time.Duration, job Job, log logger.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("interval must be > 0")
	}
	if job == nil {
		return nil, errors.New("job must not be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Scheduler{
		interval: interval,
		job:      job,
		log:      log.With("component", "sync-scheduler"),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the loop. It returns false when already running.
func (s *Scheduler) Start() bool {
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

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("Sync scheduler started, every %s", s.interval)
	s.pass(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

// Stop cancels the running pass and waits for the loop to exit.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Load() {
		return false
	}

	s.cancel()
	<-s.done
	s.running.Store(false)

	s.log.Info("Sync scheduler stopped after %d passes", s.passes.Load())
	return true
}

func (s *Scheduler) IsRunning() bool {
	return s.running.Load()
}

func (s *Scheduler) Status() Status {
	s.lastMu.Lock()
	started, finished := s.started, s.finished
	s.lastMu.Unlock()

	st := Status{
		Running:  s.running.Load(),
		Interval: s.interval.String(),
		Passes:   s.passes.Load(),
		Panics:   s.panics.Load(),
	}
	if !started.IsZero() {
		st.LastStarted = &started
	}
	if !finished.IsZero() && !finished.Before(started) {
		st.LastFinished = &finished
		st.LastDuration = finished.Sub(started).Round(time.Millisecond).String()
	}
	return st
}

func (s *Scheduler) pass(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, s.interval)
	defer cancel()

	start := time.Now()
	s.lastMu.Lock()
	s.started = start
	s.lastMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.log.Error("Sync pass panicked: %v", r)
		}
		s.passes.Add(1)
		s.lastMu.Lock()
		s.finished = time.Now()
		s.lastMu.Unlock()
		s.log.Debug("Sync pass finished in %dms", time.Since(start).Milliseconds())
	}()

	s.job.Tick(ctx)
}
