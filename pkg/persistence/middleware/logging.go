package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
)

type loggingMiddleware struct {
	next   ports.CursorStore
	logger *slog.Logger
}

// NewLoggingMiddleware logs every store call at debug level and failures at warn.
// A missing cursor is not a failure.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ports.CursorStore) ports.CursorStore {
		return &loggingMiddleware{next: next, logger: logger}
	}
}

func (m *loggingMiddleware) observe(op, key string, start time.Time, err error) {
	attrs := []any{"op", op, "key", key, "duration", time.Since(start)}
	if err != nil && !errors.Is(err, domain.ErrCursorNotFound) {
		m.logger.Warn("Cursor store call failed", append(attrs, "error", err)...)
		return
	}
	m.logger.Debug("Cursor store call", attrs...)
}

func (m *loggingMiddleware) Save(ctx context.Context, key, cursor string) error {
	start := time.Now()
	err := m.next.Save(ctx, key, cursor)
	m.observe("save", key, start, err)
	return err
}

func (m *loggingMiddleware) Load(ctx context.Context, key string) (string, error) {
	start := time.Now()
	cursor, err := m.next.Load(ctx, key)
	m.observe("load", key, start, err)
	return cursor, err
}

func (m *loggingMiddleware) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := m.next.Delete(ctx, key)
	m.observe("delete", key, start, err)
	return err
}

func (m *loggingMiddleware) List(ctx context.Context) ([]string, error) {
	start := time.Now()
	keys, err := m.next.List(ctx)
	m.observe("list", "", start, err)
	return keys, err
}
