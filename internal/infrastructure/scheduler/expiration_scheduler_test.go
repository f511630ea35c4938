package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	appsales "github.com/potting/backend/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingSweeper records sweep invocations
type countingSweeper struct {
	mu     sync.Mutex
	calls  int
	result *appsales.SweepResult
	err    error
}

func (s *countingSweeper) SweepExpiration(_ context.Context, _ time.Time) (*appsales.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &appsales.SweepResult{}, nil
}

func (s *countingSweeper) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestExpirationScheduler(t *testing.T) {
	t.Run("rejects non-positive interval", func(t *testing.T) {
		_, err := NewExpirationScheduler(&countingSweeper{}, 0, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("sweeps immediately on start", func(t *testing.T) {
		sweeper := &countingSweeper{result: &appsales.SweepResult{Expired: 2}}
		s, err := NewExpirationScheduler(sweeper, time.Hour, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return sweeper.count() >= 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("sweeps on each tick", func(t *testing.T) {
		sweeper := &countingSweeper{}
		s, err := NewExpirationScheduler(sweeper, 20*time.Millisecond, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return sweeper.count() >= 3
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("sweep error does not stop the loop", func(t *testing.T) {
		sweeper := &countingSweeper{err: errors.New("db down")}
		s, err := NewExpirationScheduler(sweeper, 20*time.Millisecond, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return sweeper.count() >= 2
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		s, err := NewExpirationScheduler(&countingSweeper{}, time.Hour, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		assert.NoError(t, s.Stop(context.Background()))
		assert.NoError(t, s.Stop(context.Background()))
	})

	t.Run("start is idempotent", func(t *testing.T) {
		sweeper := &countingSweeper{}
		s, err := NewExpirationScheduler(sweeper, time.Hour, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		require.NoError(t, s.Start(context.Background()))
		assert.NoError(t, s.Stop(context.Background()))
	})
}

func TestPaymentReminderScheduler_UntilNextRun(t *testing.T) {
	s, err := NewPaymentReminderScheduler(nil, 8, zap.NewNop())
	require.NoError(t, err)

	t.Run("before the hour waits until today", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
		assert.Equal(t, 2*time.Hour, s.untilNextRun(now))
	})

	t.Run("after the hour waits until tomorrow", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
		assert.Equal(t, 22*time.Hour+30*time.Minute, s.untilNextRun(now))
	})

	t.Run("exactly at the hour waits a full day", func(t *testing.T) {
		now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, 24*time.Hour, s.untilNextRun(now))
	})
}

func TestPaymentReminderScheduler_Validation(t *testing.T) {
	_, err := NewPaymentReminderScheduler(nil, 24, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPaymentReminderScheduler(nil, -1, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// recordingRefresher counts refresh calls
type recordingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (r *recordingRefresher) Refresh(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return nil
}

func (r *recordingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestParamRefreshScheduler(t *testing.T) {
	t.Run("refreshes on start and on ticks", func(t *testing.T) {
		refresher := &recordingRefresher{}
		s, err := NewParamRefreshScheduler(refresher, 20*time.Millisecond, zap.NewNop())
		require.NoError(t, err)

		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		assert.Eventually(t, func() bool {
			return refresher.count() >= 2
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		_, err := NewParamRefreshScheduler(&recordingRefresher{}, 0, zap.NewNop())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}
