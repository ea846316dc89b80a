package domain

// ActionType tags the closed action variant set. Unknown tags decode fine
// and are skipped with a warning at execution time.
const (
	ActionNavigate    = "navigate"
	ActionStateUpdate = "state_update"
	ActionServiceCall = "service_call"
	ActionClose       = "close"
)

// Scope classifies a state key's lifetime.
type Scope string

const (
	// ScopeScreen state is reset and reseeded on every navigation.
	ScopeScreen Scope = "screen"
	// ScopeModule state is seeded at run start and persists for the run.
	ScopeModule Scope = "module"
)

// Action is one step of a transition. The populated fields depend on Type;
// the zero value of the others is ignored.
type Action struct {
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// Navigate: target screen id (a "deeplink").
	Target string `json:"target,omitempty" yaml:"target,omitempty" mapstructure:"target"`

	// StateUpdate: scope plus key/value writes. New keys are created,
	// existing keys are overwritten; array values replace wholesale.
	// Values may carry {{placeholder}} templates resolved against merged
	// state plus transient tool-call args.
	Scope  Scope          `json:"scope,omitempty" yaml:"scope,omitempty" mapstructure:"scope"`
	Values map[string]any `json:"values,omitempty" yaml:"values,omitempty" mapstructure:"values"`

	// ServiceCall: external operation name and parameters. Params may carry
	// {{placeholder}} templates resolved against merged state. Exactly one
	// of OnSuccess/OnError runs in place of this action's remaining
	// siblings once the call resolves.
	Service   string         `json:"service,omitempty" yaml:"service,omitempty" mapstructure:"service"`
	Params    map[string]any `json:"params,omitempty" yaml:"params,omitempty" mapstructure:"params"`
	OnSuccess []Action       `json:"on_success,omitempty" yaml:"on_success,omitempty" mapstructure:"on_success"`
	OnError   []Action       `json:"on_error,omitempty" yaml:"on_error,omitempty" mapstructure:"on_error"`

	// Close: terminate the run with a completion flag and reason payload.
	Completed bool           `json:"completed,omitempty" yaml:"completed,omitempty" mapstructure:"completed"`
	Reason    map[string]any `json:"reason,omitempty" yaml:"reason,omitempty" mapstructure:"reason"`
}

// Navigate builds a navigate action.
func Navigate(target string) Action {
	return Action{Type: ActionNavigate, Target: target}
}

// StateUpdate builds a state update action.
func StateUpdate(scope Scope, values map[string]any) Action {
	return Action{Type: ActionStateUpdate, Scope: scope, Values: values}
}

// ServiceCall builds a service call action.
func ServiceCall(service string, params map[string]any, onSuccess, onError []Action) Action {
	return Action{Type: ActionServiceCall, Service: service, Params: params, OnSuccess: onSuccess, OnError: onError}
}

// Close builds a terminating close action.
func Close(completed bool, reason map[string]any) Action {
	return Action{Type: ActionClose, Completed: completed, Reason: reason}
}
