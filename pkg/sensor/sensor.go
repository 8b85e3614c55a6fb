package sensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
)

const (
	// DefaultName is the cursor key used when no name is configured.
	DefaultName = "json_file_reload_sensor"
	// DefaultLocation is the code location reloaded when no target is configured.
	DefaultLocation = "definitions.py"
	// DefaultMinimumInterval is the tick spacing hosts should honor.
	DefaultMinimumInterval = 30 * time.Second
)

// Sensor watches one manifest file and reloads a code location when it changes.
type Sensor struct {
	name     string
	path     string
	location string
	policy   AdvancePolicy
	interval time.Duration

	reloader ports.Reloader
	store    ports.CursorStore
	hooks    domain.SensorHooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Sensor.
type Option func(*Sensor)

// WithTarget sets the code location to reload.
func WithTarget(location string) Option {
	return func(s *Sensor) {
		s.location = location
	}
}

// WithPolicy sets the watermark advance policy.
func WithPolicy(p AdvancePolicy) Option {
	return func(s *Sensor) {
		s.policy = p
	}
}

// WithMinimumInterval records how often hosts should tick the sensor.
func WithMinimumInterval(d time.Duration) Option {
	return func(s *Sensor) {
		s.interval = d
	}
}

// WithHooks registers observability hooks.
func WithHooks(hooks domain.SensorHooks) Option {
	return func(s *Sensor) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the sensor.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sensor) {
		s.logger = logger
	}
}

// WithClock overrides the clock used to timestamp evaluations.
func WithClock(now func() time.Time) Option {
	return func(s *Sensor) {
		s.now = now
	}
}

// New creates a sensor for the manifest at path.
// name is the cursor key; an empty name selects DefaultName.
func New(name, path string, reloader ports.Reloader, store ports.CursorStore, opts ...Option) *Sensor {
	s := &Sensor{
		name:     name,
		path:     path,
		location: DefaultLocation,
		policy:   AdvanceOnSuccess,
		interval: DefaultMinimumInterval,
		reloader: reloader,
		store:    store,
		now:      time.Now,
	}
	if s.name == "" {
		s.name = DefaultName
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.logger = s.logger.With("sensor", s.name)
	return s
}

// Name returns the sensor name, which is also its cursor key.
func (s *Sensor) Name() string { return s.name }

// Path returns the watched manifest path.
func (s *Sensor) Path() string { return s.path }

// Target returns the code location the sensor reloads.
func (s *Sensor) Target() string { return s.location }

// Policy returns the watermark advance policy.
func (s *Sensor) Policy() AdvancePolicy { return s.policy }

// MinimumInterval returns the tick spacing hosts should honor.
func (s *Sensor) MinimumInterval() time.Duration { return s.interval }

// Evaluate runs one tick. It never returns an error: every outcome is a skip status.
func (s *Sensor) Evaluate(ctx context.Context) domain.Evaluation {
	started := s.now()
	eval := domain.Evaluation{
		Sensor:    s.name,
		Manifest:  s.path,
		StartedAt: started,
	}

	s.evaluate(ctx, &eval)

	eval.Duration = s.now().Sub(started)
	s.logger.Debug("Sensor evaluated",
		"status", eval.Status.Message,
		"changed", eval.Changed,
		"cursor_advanced", eval.CursorAdvanced,
	)
	if s.hooks.OnEvaluate != nil {
		s.hooks.OnEvaluate(ctx, &eval)
	}
	return eval
}

func (s *Sensor) evaluate(ctx context.Context, eval *domain.Evaluation) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Sensor tick panicked", "panic", r)
			eval.Status = domain.Skip(fmt.Sprintf("internal error: %v", r))
		}
	}()

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			eval.Status = domain.Skip(domain.SkipFileNotFound)
			return
		}
		s.logger.Warn("Failed to stat manifest", "path", s.path, "err", err)
		eval.Status = domain.Skip(fmt.Sprintf("failed to stat manifest: %v", err))
		return
	}
	current := Mtime(info.ModTime())
	eval.CurrentMtime = current

	last, err := s.loadWatermark(ctx)
	if err != nil {
		s.logger.Error("Failed to read cursor", "err", err)
		eval.Status = domain.Skip(fmt.Sprintf("failed to read cursor: %v", err))
		return
	}
	eval.LastMtime = last

	// Regressed clocks land here too.
	if current <= last {
		eval.Status = domain.Skip(domain.SkipNoChanges)
		return
	}
	eval.Changed = true

	outcome := s.reloader.Reload(ctx, s.location)
	eval.Outcome = &outcome
	eval.Reloaded = outcome.Success()

	var msg string
	if outcome.Success() {
		s.logger.Info("Manifest changed, code location reloaded", "location", s.location, "mtime", current)
		msg = fmt.Sprintf("reloaded at %s", EncodeWatermark(current))
	} else {
		s.logger.Error("Failed to reload code location", "location", s.location, "err", outcome.String())
		msg = fmt.Sprintf("failed to reload: %s", outcome.String())
	}

	if s.policy.advance(outcome.Success()) {
		if err := s.store.Save(ctx, s.name, EncodeWatermark(current)); err != nil {
			s.logger.Error("Failed to save cursor", "err", err)
			msg += fmt.Sprintf(" (cursor not saved: %v)", err)
		} else {
			eval.CursorAdvanced = true
		}
	}
	eval.Status = domain.Skip(msg)

	if s.hooks.OnReload != nil {
		s.hooks.OnReload(ctx, eval)
	}
}

func (s *Sensor) loadWatermark(ctx context.Context) (float64, error) {
	cursor, err := s.store.Load(ctx, s.name)
	if err != nil {
		if errors.Is(err, domain.ErrCursorNotFound) {
			return 0, nil
		}
		return 0, err
	}

	last, err := DecodeWatermark(cursor)
	if err != nil {
		// Unreadable cursors count as never observed.
		s.logger.Warn("Ignoring unreadable cursor", "err", err)
		return 0, nil
	}
	return last, nil
}

// Watermark returns the stored watermark, or 0 when none has been recorded.
func (s *Sensor) Watermark(ctx context.Context) (float64, error) {
	cursor, err := s.store.Load(ctx, s.name)
	if err != nil {
		if errors.Is(err, domain.ErrCursorNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return DecodeWatermark(cursor)
}

// Reset deletes the stored watermark so the next tick treats the manifest as changed.
func (s *Sensor) Reset(ctx context.Context) error {
	return s.store.Delete(ctx, s.name)
}
