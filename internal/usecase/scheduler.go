package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

type generator interface {
	Generate(ctx context.Context, source Source) (*GenerateResult, error)
}

// Scheduler triggers a full generation run on a fixed interval. A tick that
// lands while another run holds the lock is skipped.
type Scheduler struct {
	generator generator
	interval  time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(generator generator, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{generator: generator, interval: interval, logger: logger}
}

func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.logger.Debug("scheduler already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go func(done chan struct{}) {
		defer close(done)
		s.run(childCtx)
	}(s.done)
	s.logger.Info("generation scheduler started", zap.Duration("interval", s.interval))
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.logger.Warn("timeout stopping generation scheduler")
	}
}

func (s *Scheduler) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	_, err := s.generator.Generate(ctx, SourceAll)
	switch {
	case err == nil:
	case errors.Is(err, ErrRunInProgress):
		s.logger.Debug("scheduled run skipped, another run is active")
	case ctx.Err() != nil:
	default:
		s.logger.Error("scheduled generation failed", zap.Error(err))
	}
}
