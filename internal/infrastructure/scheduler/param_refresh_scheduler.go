package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ParameterRefresher reloads the business parameter snapshot
type ParameterRefresher interface {
	Refresh(ctx context.Context) error
}

// ParamRefreshScheduler keeps the cached parameter provider in sync with the
// parameters table.
type ParamRefreshScheduler struct {
	refresher ParameterRefresher
	interval  time.Duration
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewParamRefreshScheduler creates a new parameter refresh scheduler
func NewParamRefreshScheduler(refresher ParameterRefresher, interval time.Duration, logger *zap.Logger) (*ParamRefreshScheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &ParamRefreshScheduler{
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}, nil
}

// Start starts the refresh loop. The first refresh runs immediately.
func (s *ParamRefreshScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Parameter refresh scheduler started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop gracefully stops the refresh loop
func (s *ParamRefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Parameter refresh scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Parameter refresh scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ParamRefreshScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *ParamRefreshScheduler) refresh(ctx context.Context) {
	if err := s.refresher.Refresh(ctx); err != nil {
		s.logger.Warn("Parameter refresh failed, keeping previous snapshot", zap.Error(err))
	}
}
