package scheduler

import (
	"context"
	"sync"
	"time"

	appsales "github.com/potting/backend/internal/application/sales"
	"go.uber.org/zap"
)

// ExpirationSweeper runs one pass over active confirmations, expiring those
// past their validity window and consuming exhausted ones
type ExpirationSweeper interface {
	SweepExpiration(ctx context.Context, now time.Time) (*appsales.SweepResult, error)
}

// ExpirationScheduler runs the confirmation expiration sweep on a fixed
// interval. The sweep is idempotent and stateless, so a missed or repeated
// tick is harmless.
type ExpirationScheduler struct {
	sweeper  ExpirationSweeper
	interval time.Duration
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewExpirationScheduler creates a new expiration scheduler
func NewExpirationScheduler(sweeper ExpirationSweeper, interval time.Duration, logger *zap.Logger) (*ExpirationScheduler, error) {
	if interval <= 0 {
		return nil, ErrInvalidConfig
	}
	return &ExpirationScheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}, nil
}

// Start starts the sweep loop. The first sweep runs immediately.
func (s *ExpirationScheduler) Start(ctx context.Context) error {
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

	s.logger.Info("Expiration scheduler started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop gracefully stops the sweep loop
func (s *ExpirationScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Expiration scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Expiration scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *ExpirationScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ExpirationScheduler) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Expiration sweep panicked", zap.Any("panic", r))
		}
	}()

	result, err := s.sweeper.SweepExpiration(ctx, time.Now())
	if err != nil {
		s.logger.Error("Expiration sweep failed", zap.Error(err))
		return
	}
	if result.Expired > 0 || result.Consumed > 0 || len(result.Failed) > 0 {
		s.logger.Info("Expiration sweep completed",
			zap.Int("expired", result.Expired),
			zap.Int("consumed", result.Consumed),
			zap.Strings("failed", result.Failed),
		)
	}
}
