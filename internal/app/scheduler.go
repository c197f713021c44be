package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// Syncer runs one reconciliation cycle.
type Syncer interface {
	Sync(ctx context.Context) domain.SyncResult
}

// Scheduler fires a Syncer once at start and then on a fixed interval.
// There is no backoff: a failed cycle simply waits for the next tick.
type Scheduler struct {
	syncer       Syncer
	interval     time.Duration
	cycleTimeout time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// NewScheduler creates a scheduler. A zero cycleTimeout runs cycles without a deadline.
func NewScheduler(syncer Syncer, interval, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		syncer:       syncer,
		interval:     interval,
		cycleTimeout: cycleTimeout,
		logger:       logger.With(slog.String("component", "scheduler")),
	}
}

// Run blocks, syncing immediately and then every interval, until ctx is
// cancelled or Stop is called. It returns nil on a clean stop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return domain.NewValidationErrorWithValue("interval", "must be positive", s.interval)
	}

	s.mu.Lock()
	if s.stopCh != nil {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})
	s.stopCh, s.done = stopCh, done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.stopCh, s.done = nil, nil
		s.mu.Unlock()
		close(done)
	}()

	s.logger.InfoContext(ctx, "sync scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sync scheduler stopped", slog.String("reason", "context done"))
			return nil
		case <-stopCh:
			s.logger.InfoContext(ctx, "sync scheduler stopped", slog.String("reason", "stop requested"))
			return nil
		}
	}
}

// Stop ends a running Run and waits for the in-flight cycle to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	if stopCh != nil {
		select {
		case <-stopCh:
		default:
			close(stopCh)
		}
	}
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycleCtx := logging.WithContext(ctx, logging.FromContextOr(ctx, s.logger))

	if s.cycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(cycleCtx, s.cycleTimeout)
		defer cancel()
	}

	s.syncer.Sync(cycleCtx)
}
