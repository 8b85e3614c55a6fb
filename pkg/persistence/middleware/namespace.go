package middleware

import (
	"context"
	"strings"

	"github.com/aretw0/tablewatch/pkg/ports"
)

type namespaceMiddleware struct {
	next   ports.CursorStore
	prefix string
}

// NewNamespaceMiddleware isolates keys under namespace so several deployments can share
// one store. List only returns keys of the namespace, without the prefix.
// An empty namespace leaves the store unchanged.
func NewNamespaceMiddleware(namespace string) Middleware {
	return func(next ports.CursorStore) ports.CursorStore {
		if namespace == "" {
			return next
		}
		return &namespaceMiddleware{next: next, prefix: namespace + "."}
	}
}

func (m *namespaceMiddleware) Save(ctx context.Context, key, cursor string) error {
	return m.next.Save(ctx, m.prefix+key, cursor)
}

func (m *namespaceMiddleware) Load(ctx context.Context, key string) (string, error) {
	return m.next.Load(ctx, m.prefix+key)
}

func (m *namespaceMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, m.prefix+key)
}

func (m *namespaceMiddleware) List(ctx context.Context) ([]string, error) {
	keys, err := m.next.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if rest, ok := strings.CutPrefix(k, m.prefix); ok {
			out = append(out, rest)
		}
	}
	return out, nil
}
