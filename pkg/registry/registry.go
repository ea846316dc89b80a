// Package registry provides a concurrency-safe service registry that
// implements ports.ServiceCaller by dispatching on the service name.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

// ServiceFunc is the signature for a registered service implementation.
// It receives resolved call params and returns the result the on_success or
// on_error branch will observe.
type ServiceFunc func(ctx context.Context, params map[string]any) (ports.ServiceResult, error)

// Registry maps service names to implementations.
type Registry struct {
	mu       sync.RWMutex
	services map[string]ServiceFunc
	fallback ports.ServiceCaller
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{services: make(map[string]ServiceFunc)}
}

// Register adds a service to the registry.
// If a service with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ServiceFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = fn
}

// RegisterOK adds a service whose function only fails on transport errors:
// a returned error surfaces as a call error, any other outcome is an OK
// result carrying the returned payload.
func (r *Registry) RegisterOK(name string, fn func(ctx context.Context, params map[string]any) (any, error)) {
	r.Register(name, func(ctx context.Context, params map[string]any) (ports.ServiceResult, error) {
		payload, err := fn(ctx, params)
		if err != nil {
			return ports.ServiceResult{}, err
		}
		return ports.ServiceResult{OK: true, Payload: payload}, nil
	})
}

// Fallback sets a caller consulted for names not present in the registry.
func (r *Registry) Fallback(caller ports.ServiceCaller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = caller
}

// Names returns the registered service names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call implements ports.ServiceCaller. An unknown name without a fallback is
// an error, which the dispatcher routes to the call's on_error branch.
func (r *Registry) Call(ctx context.Context, name string, params map[string]any) (ports.ServiceResult, error) {
	r.mu.RLock()
	fn, ok := r.services[name]
	fallback := r.fallback
	r.mu.RUnlock()

	if !ok {
		if fallback != nil {
			return fallback.Call(ctx, name, params)
		}
		return ports.ServiceResult{}, fmt.Errorf("service not found: %s", name)
	}
	return fn(ctx, params)
}
