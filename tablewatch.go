package tablewatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/adapters/memory"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/manifest"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/aretw0/tablewatch/pkg/registry"
	"github.com/aretw0/tablewatch/pkg/reload"
	"github.com/aretw0/tablewatch/pkg/sensor"
	"github.com/aretw0/tablewatch/pkg/unit"
)

// DefaultExternalSource is the upstream every generated unit reads from.
const DefaultExternalSource = "raw_transactions"

// Definitions is the set of units and sensors a host loads at startup.
type Definitions struct {
	registry *registry.Registry
	sensor   *sensor.Sensor
	logger   *slog.Logger
}

type buildConfig struct {
	reloader   ports.Reloader
	store      ports.CursorStore
	sensorName string
	external   string
	unitOpts   []unit.Option
	sensorOpts []sensor.Option
	logger     *slog.Logger
	reloadHost string
	reloadPort int
}

// Option defines a functional option for Build.
type Option func(*buildConfig)

// WithReloader injects the client used to reload the code location.
// By default Build reloads through a GraphQL client for localhost:3000.
func WithReloader(r ports.Reloader) Option {
	return func(c *buildConfig) {
		c.reloader = r
	}
}

// WithReloadTarget sets the orchestrator address used by the default reload client.
func WithReloadTarget(host string, port int) Option {
	return func(c *buildConfig) {
		c.reloadHost = host
		c.reloadPort = port
	}
}

// WithCursorStore sets where the sensor persists its watermark (default: in memory).
func WithCursorStore(s ports.CursorStore) Option {
	return func(c *buildConfig) {
		c.store = s
	}
}

// WithSensorName sets the sensor name, which is also its cursor key.
func WithSensorName(name string) Option {
	return func(c *buildConfig) {
		c.sensorName = name
	}
}

// WithExternalSource sets the upstream the generated units depend on.
// An empty name generates units without dependencies.
func WithExternalSource(name string) Option {
	return func(c *buildConfig) {
		c.external = name
	}
}

// WithUnitOptions passes extra options to the unit factory.
func WithUnitOptions(opts ...unit.Option) Option {
	return func(c *buildConfig) {
		c.unitOpts = append(c.unitOpts, opts...)
	}
}

// WithSensorOptions passes extra options to the sensor (target, policy, hooks...).
func WithSensorOptions(opts ...sensor.Option) Option {
	return func(c *buildConfig) {
		c.sensorOpts = append(c.sensorOpts, opts...)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) {
		c.logger = logger
	}
}

// Build loads the manifest at manifestPath, generates one unit per entry and wires the
// reload sensor that watches the same file. Manifest and registry errors are returned as-is
// so the caller can abort startup.
func Build(manifestPath string, opts ...Option) (*Definitions, error) {
	cfg := buildConfig{
		external:   DefaultExternalSource,
		reloadHost: "localhost",
		reloadPort: 3000,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.store == nil {
		cfg.store = memory.NewStore()
	}
	if cfg.reloader == nil {
		cfg.reloader = reload.NewClient(cfg.reloadHost, cfg.reloadPort, reload.WithLogger(cfg.logger))
	}

	entries, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	reg := registry.NewRegistry()
	unitOpts := []unit.Option{unit.WithDeps()}
	if cfg.external != "" {
		if err := reg.RegisterExternal(domain.ExternalSpec{Name: cfg.external}); err != nil {
			return nil, err
		}
		unitOpts = []unit.Option{unit.WithDeps(cfg.external)}
	}
	unitOpts = append(unitOpts, cfg.unitOpts...)

	for _, u := range unit.BuildAll(entries, unitOpts...) {
		if err := reg.Register(u); err != nil {
			return nil, fmt.Errorf("register units from %s: %w", manifestPath, err)
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, fmt.Errorf("validate units from %s: %w", manifestPath, err)
	}

	sensorOpts := append([]sensor.Option{sensor.WithLogger(cfg.logger)}, cfg.sensorOpts...)
	s := sensor.New(cfg.sensorName, manifestPath, cfg.reloader, cfg.store, sensorOpts...)

	cfg.logger.Info("Definitions built", "manifest", manifestPath, "units", reg.Len(), "sensor", s.Name())
	return &Definitions{registry: reg, sensor: s, logger: cfg.logger}, nil
}

// Units returns the generated units in manifest order.
func (d *Definitions) Units() []domain.ProcessingUnit {
	return d.registry.Units()
}

// Unit returns the unit registered under name.
func (d *Definitions) Unit(name string) (domain.ProcessingUnit, bool) {
	return d.registry.Get(name)
}

// External returns the upstream specs the units depend on.
func (d *Definitions) External() []domain.ExternalSpec {
	return d.registry.External()
}

// Sensor returns the manifest reload sensor.
func (d *Definitions) Sensor() *sensor.Sensor {
	return d.sensor
}

// Sensors returns every sensor the host should schedule.
func (d *Definitions) Sensors() []*sensor.Sensor {
	return []*sensor.Sensor{d.sensor}
}

// Materialize runs the named unit with the definitions logger in its context.
func (d *Definitions) Materialize(ctx context.Context, name string) (string, error) {
	return d.registry.Materialize(logging.WithLogger(ctx, d.logger), name)
}
