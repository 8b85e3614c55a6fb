package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/internal/config"
	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/adapters/file"
	httpAdapter "github.com/aretw0/tablewatch/pkg/adapters/http"
	"github.com/aretw0/tablewatch/pkg/adapters/memory"
	"github.com/aretw0/tablewatch/pkg/adapters/redis"
	"github.com/aretw0/tablewatch/pkg/metrics"
	"github.com/aretw0/tablewatch/pkg/persistence/middleware"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/aretw0/tablewatch/pkg/reload"
	"github.com/aretw0/tablewatch/pkg/scheduler"
	"github.com/aretw0/tablewatch/pkg/sensor"
)

// App is everything a command needs: definitions, their scheduler and the cursor backend.
type App struct {
	Config    config.Config
	Logger    *slog.Logger
	Defs      *tablewatch.Definitions
	Scheduler *scheduler.Scheduler
	Store     ports.CursorStore
	Metrics   *metrics.Metrics
	Streams   *httpAdapter.StreamManager

	closers []io.Closer
}

// NewLogger builds the logger described by cfg. debug forces the debug level.
func NewLogger(w io.Writer, cfg config.Config, debug bool) (*slog.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	return logging.NewWithFormat(w, level, logging.Format(cfg.LogFormat)), nil
}

// OpenStore opens the cursor backend selected by cfg.
// The locker is nil unless the backend can coordinate replicas.
func OpenStore(cfg config.CursorConfig) (ports.CursorStore, ports.DistributedLocker, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil, nil
	case config.BackendFile:
		return file.New(cfg.Dir), nil, nil, nil
	case config.BackendRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.Prefix))
		return store, redis.NewLocker(store.Client(), cfg.Prefix), store, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown cursor backend %q", cfg.Backend)
	}
}

// NewApp wires the definitions described by cfg.
// A nil reloader selects the GraphQL client for cfg.Host and cfg.Port.
func NewApp(cfg config.Config, logger *slog.Logger, reloader ports.Reloader) (*App, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, locker, closer, err := OpenStore(cfg.Cursor)
	if err != nil {
		return nil, err
	}
	store = middleware.Chain(store,
		middleware.NewLoggingMiddleware(logger),
		middleware.NewNamespaceMiddleware(cfg.Cursor.Namespace),
	)
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		Metrics: metrics.New(),
		Streams: httpAdapter.NewStreamManager(logger),
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	if reloader == nil {
		reloader = reload.NewClient(cfg.Host, cfg.Port,
			reload.WithTimeout(cfg.RequestTimeout()),
			reload.WithLogger(logger),
		)
	}

	defs, err := tablewatch.Build(cfg.ManifestPath,
		tablewatch.WithReloader(reloader),
		tablewatch.WithCursorStore(store),
		tablewatch.WithSensorName(cfg.SensorName),
		tablewatch.WithExternalSource(cfg.ExternalSource),
		tablewatch.WithLogger(logger),
		tablewatch.WithSensorOptions(
			sensor.WithTarget(cfg.LocationName),
			sensor.WithPolicy(cfg.Policy()),
			sensor.WithMinimumInterval(cfg.PollInterval()),
			sensor.WithHooks(app.Metrics.Hooks()),
			sensor.WithHooks(app.Streams.Hooks()),
		),
	)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Defs = defs

	schedOpts := []scheduler.Option{scheduler.WithLogger(logger)}
	if locker != nil {
		schedOpts = append(schedOpts, scheduler.WithLocker(locker, cfg.PollInterval()+cfg.RequestTimeout()))
	}
	app.Scheduler = scheduler.New(defs.Sensor(), defs.Sensor().MinimumInterval(), schedOpts...)
	return app, nil
}

// Handler returns the HTTP status API for the app.
func (a *App) Handler() http.Handler {
	return httpAdapter.NewHandler(a.Defs, a.Scheduler,
		httpAdapter.WithStreams(a.Streams),
		httpAdapter.WithMetrics(a.Metrics.Handler()),
		httpAdapter.WithLogger(a.Logger),
	)
}

// Close releases the cursor backend.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
