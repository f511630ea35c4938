package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PaymentReminder logs reminders for validated formulas with an outstanding
// installment and returns how many were flagged
type PaymentReminder interface {
	RemindUnpaidFormulas(ctx context.Context, now time.Time) (int, error)
}

// PaymentReminderScheduler runs the formula payment reminder once a day at a
// configured local hour.
type PaymentReminderScheduler struct {
	reminder PaymentReminder
	hour     int
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	// now is swappable for tests
	now func() time.Time
}

// NewPaymentReminderScheduler creates a new daily reminder scheduler.
// hour is the local hour of day (0-23) the reminder fires at.
func NewPaymentReminderScheduler(reminder PaymentReminder, hour int, logger *zap.Logger) (*PaymentReminderScheduler, error) {
	if hour < 0 || hour > 23 {
		return nil, ErrInvalidConfig
	}
	return &PaymentReminderScheduler{
		reminder: reminder,
		hour:     hour,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start starts the daily loop
func (s *PaymentReminderScheduler) Start(ctx context.Context) error {
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

	s.logger.Info("Payment reminder scheduler started",
		zap.Int("hour", s.hour),
	)
	return nil
}

// Stop gracefully stops the daily loop
func (s *PaymentReminderScheduler) Stop(ctx context.Context) error {
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
		s.logger.Info("Payment reminder scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Payment reminder scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *PaymentReminderScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		wait := s.untilNextRun(s.now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.remind(ctx)
		}
	}
}

// untilNextRun returns the duration until the next occurrence of the
// configured hour
func (s *PaymentReminderScheduler) untilNextRun(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *PaymentReminderScheduler) remind(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Payment reminder panicked", zap.Any("panic", r))
		}
	}()

	count, err := s.reminder.RemindUnpaidFormulas(ctx, s.now())
	if err != nil {
		s.logger.Error("Payment reminder failed", zap.Error(err))
		return
	}
	s.logger.Info("Payment reminder completed", zap.Int("reminded", count))
}
