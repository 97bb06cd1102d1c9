package media

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Deleter removes a stored asset by its location.
type Deleter interface {
	Delete(ctx context.Context, location string) error
}

// ReaperConfig controls the concurrency characteristics of the reaper.
type ReaperConfig struct {
	QueueSize int
	Workers   int
	// Timeout bounds a single deletion.
	Timeout time.Duration
}

// Reaper deletes media assets in the background once the entities that
// referenced them are gone. Deletion failures are logged and dropped; an
// orphaned object costs storage, not correctness.
type Reaper struct {
	deleter Deleter
	logger  *slog.Logger
	timeout time.Duration

	jobs   chan string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// ErrReaperClosed is returned by Enqueue after Shutdown.
var ErrReaperClosed = errors.New("media reaper closed")

// NewReaper starts the worker pool.
func NewReaper(deleter Deleter, cfg ReaperConfig, logger *slog.Logger) *Reaper {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	r := &Reaper{
		deleter: deleter,
		logger:  logger,
		timeout: cfg.Timeout,
		jobs:    make(chan string, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	r.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go r.worker()
	}

	return r
}

// Enqueue schedules deletion of the given locations. Empty locations are
// ignored. It blocks while the queue is full.
func (r *Reaper) Enqueue(ctx context.Context, locations ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrReaperClosed
	}

	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r.jobs <- loc:
		}
	}
	return nil
}

// Shutdown stops accepting work and waits for queued deletions to finish.
// When ctx expires first, in-flight deletions are cancelled.
func (r *Reaper) Shutdown(ctx context.Context) error {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.jobs)
		r.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	case <-done:
		r.cancel()
		return nil
	}
}

func (r *Reaper) worker() {
	defer r.wg.Done()

	for loc := range r.jobs {
		if r.ctx.Err() != nil {
			continue
		}
		r.reap(loc)
	}
}

func (r *Reaper) reap(location string) {
	if r.deleter == nil {
		r.logger.Error("media reaper missing deleter", "location", location)
		return
	}

	ctx, cancel := context.WithTimeout(r.ctx, r.timeout)
	defer cancel()

	if err := r.deleter.Delete(ctx, location); err != nil {
		r.logger.Warn("media deletion failed", "location", location, "error", err)
		return
	}
	r.logger.Debug("media deleted", "location", location)
}
