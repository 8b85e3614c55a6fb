// Package middleware decorates cursor stores with cross-cutting behavior.
package middleware

import "github.com/aretw0/tablewatch/pkg/ports"

// Middleware allows wrapping a CursorStore to add behavior.
type Middleware func(ports.CursorStore) ports.CursorStore

// Chain wraps store with mws. The first middleware is the outermost.
func Chain(store ports.CursorStore, mws ...Middleware) ports.CursorStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
