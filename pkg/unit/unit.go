// Package unit turns manifest entries into processing units.
package unit

import (
	"context"
	"fmt"

	"github.com/aretw0/tablewatch/internal/logging"
	"github.com/aretw0/tablewatch/pkg/domain"
)

// Defaults applied by Build when no option overrides them.
var (
	DefaultDeps  = []string{"raw_transactions"}
	DefaultKinds = []string{"s3"}
)

type config struct {
	deps  []string
	kinds []string
}

// Option configures the units produced by Build.
type Option func(*config)

// WithDeps sets the upstream names every unit depends on.
func WithDeps(deps ...string) Option {
	return func(c *config) {
		c.deps = deps
	}
}

// WithKinds sets the storage kinds every unit is tagged with.
func WithKinds(kinds ...string) Option {
	return func(c *config) {
		c.kinds = kinds
	}
}

// Build produces the processing unit for entry.
// The unit body logs the source table and returns "Data from <source_table>".
func Build(entry domain.ManifestEntry, opts ...Option) domain.ProcessingUnit {
	cfg := config{deps: DefaultDeps, kinds: DefaultKinds}
	for _, opt := range opts {
		opt(&cfg)
	}

	source := entry.SourceTable
	return domain.ProcessingUnit{
		Name:        entry.Name,
		SourceTable: source,
		Deps:        append([]string(nil), cfg.deps...),
		Kinds:       append([]string(nil), cfg.kinds...),
		Body: func(ctx context.Context) (string, error) {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			logging.FromContext(ctx).Info("Processing", "unit", entry.Name, "source_table", source)
			return fmt.Sprintf("Data from %s", source), nil
		},
	}
}

// BuildAll builds one unit per entry, preserving order.
func BuildAll(entries []domain.ManifestEntry, opts ...Option) []domain.ProcessingUnit {
	units := make([]domain.ProcessingUnit, len(entries))
	for i, e := range entries {
		units[i] = Build(e, opts...)
	}
	return units
}
