package ports

import "context"

// ServiceResult is the outcome of an external service call. The interpreter
// only branches on OK; Payload is passed through untouched.
type ServiceResult struct {
	OK      bool
	Payload any
}

// ServiceCaller executes the opaque external operations referenced by
// service_call actions. A call is the only suspension point inside a run:
// the dispatcher blocks on it and events arriving meanwhile queue behind it.
type ServiceCaller interface {
	Call(ctx context.Context, name string, params map[string]any) (ServiceResult, error)
}

// ServiceCallerFunc adapts a function to the ServiceCaller interface.
type ServiceCallerFunc func(ctx context.Context, name string, params map[string]any) (ServiceResult, error)

// Call implements ServiceCaller.
func (f ServiceCallerFunc) Call(ctx context.Context, name string, params map[string]any) (ServiceResult, error) {
	return f(ctx, name, params)
}
