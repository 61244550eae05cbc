package cron

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Job is a background task that runs on a fixed interval. Fn reports its own
// failures through its logger; the scheduler only guards against overlap.
type Job struct {
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs until its context is cancelled. Register
// before Start; late registrations are ignored.
type Scheduler struct {
	mu      sync.Mutex
	jobs    []Job
	started bool
}

func New() *Scheduler { return &Scheduler{} }

func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per job and returns.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.started = true
	jobs := s.jobs
	s.mu.Unlock()

	for _, job := range jobs {
		go loop(ctx, job)
	}
}

// loop ticks the job on its interval. A run that outlasts the interval
// suppresses the following ticks instead of stacking executions.
func loop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	var running atomic.Bool
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !running.CompareAndSwap(false, true) {
				continue
			}
			go func() {
				defer running.Store(false)
				_ = job.Fn(ctx)
			}()
		}
	}
}
