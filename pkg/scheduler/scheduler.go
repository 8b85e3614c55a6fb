// Package scheduler ticks a sensor on a fixed minimum interval.
//
// Ticks are serialized: the periodic loop and manual TickNow calls share one mutex, and an
// optional distributed lock extends that guarantee to replicas sharing a cursor store.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
)

// Evaluator is the sensor surface the scheduler drives.
type Evaluator interface {
	Name() string
	Evaluate(ctx context.Context) domain.Evaluation
}

// Scheduler invokes an Evaluator periodically.
type Scheduler struct {
	sensor   Evaluator
	interval time.Duration
	locker   ports.DistributedLocker
	lockTTL  time.Duration
	logger   *slog.Logger

	tickMu sync.Mutex

	mu    sync.RWMutex
	last  *domain.Evaluation
	ticks int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocker guards every tick with a distributed lock keyed by sensor name.
// ttl bounds how long a crashed holder can block other replicas.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Scheduler) {
		s.locker = locker
		s.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the scheduler.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// New creates a scheduler ticking sensor every interval.
func New(sensor Evaluator, interval time.Duration, opts ...Option) *Scheduler {
	s := &Scheduler{
		sensor:   sensor,
		interval: interval,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.lockTTL <= 0 {
		s.lockTTL = interval
	}
	return s
}

// Interval returns the tick spacing.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// TickNow runs one evaluation, waiting for any tick already in progress.
// It only fails when the distributed lock cannot be acquired.
func (s *Scheduler) TickNow(ctx context.Context) (domain.Evaluation, error) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	if s.locker != nil {
		lockCtx, cancel := context.WithTimeout(ctx, s.lockTTL)
		unlock, err := s.locker.Lock(lockCtx, s.sensor.Name(), s.lockTTL)
		cancel()
		if err != nil {
			return domain.Evaluation{}, fmt.Errorf("tick %s: %w", s.sensor.Name(), err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				s.logger.Warn("Failed to release tick lock", "sensor", s.sensor.Name(), "err", err)
			}
		}()
	}

	eval := s.sensor.Evaluate(ctx)

	s.mu.Lock()
	s.last = &eval
	s.ticks++
	s.mu.Unlock()

	s.logger.Info("Sensor tick", "sensor", eval.Sensor, "status", eval.Status.Message, "duration", eval.Duration)
	return eval, nil
}

// Run ticks immediately and then every interval until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.logger.Info("Scheduler started", "sensor", s.sensor.Name(), "interval", s.interval)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if _, err := s.TickNow(ctx); err != nil {
			s.logger.Warn("Tick skipped", "err", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped", "sensor", s.sensor.Name())
			return nil
		case <-ticker.C:
		}
	}
}

// Last returns the most recent evaluation.
func (s *Scheduler) Last() (domain.Evaluation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return domain.Evaluation{}, false
	}
	return *s.last, true
}

// Ticks returns the number of completed evaluations.
func (s *Scheduler) Ticks() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticks
}
