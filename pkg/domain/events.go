package domain

import "context"

// SensorHooks defines callbacks for sensor observability.
type SensorHooks struct {
	// OnEvaluate runs at the end of every tick.
	OnEvaluate func(context.Context, *Evaluation)
	// OnReload runs after a reload request returns, before OnEvaluate.
	OnReload func(context.Context, *Evaluation)
}

// Merge returns hooks that call h first and then other.
func (h SensorHooks) Merge(other SensorHooks) SensorHooks {
	return SensorHooks{
		OnEvaluate: chain(h.OnEvaluate, other.OnEvaluate),
		OnReload:   chain(h.OnReload, other.OnReload),
	}
}

func chain(a, b func(context.Context, *Evaluation)) func(context.Context, *Evaluation) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *Evaluation) {
		a(ctx, e)
		b(ctx, e)
	}
}
