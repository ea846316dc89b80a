// Package middleware wraps a RunStore with cross-cutting persistence
// behavior. Onboarding runs carry user answers, so masking and
// encryption-at-rest live here rather than in every backend.
package middleware

import "github.com/wayfarerhq/wayfarer/pkg/ports"

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

// Chain applies middlewares outermost-first: Chain(store, a, b) wraps the
// store with b, then a.
func Chain(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
