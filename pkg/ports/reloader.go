package ports

import (
	"context"

	"github.com/aretw0/tablewatch/pkg/domain"
)

// Reloader asks a running orchestrator to reload one code location.
// Implementations never return errors: every failure is folded into the outcome.
type Reloader interface {
	Reload(ctx context.Context, location string) domain.ReloadOutcome
}

// ReloaderFunc adapts a plain function to the Reloader interface.
type ReloaderFunc func(ctx context.Context, location string) domain.ReloadOutcome

// Reload calls f(ctx, location).
func (f ReloaderFunc) Reload(ctx context.Context, location string) domain.ReloadOutcome {
	return f(ctx, location)
}
