package domain

import "context"

// AgentSignal is the outbound contract to the voice-agent runtime after a
// dispatch: which screen/agent is now active and whether the conversation
// should stop producing turns.
type AgentSignal struct {
	ScreenID         string `json:"screen_id"`
	AgentID          string `json:"agent_id"`
	Completed        bool   `json:"completed"`
	CompletionReason string `json:"completion_reason,omitempty"`
}

// Warning codes surfaced by the dispatcher. None of these abort a run; they
// exist for observability.
const (
	WarnUnknownAction  = "unknown_action"
	WarnUnknownScreen  = "unknown_screen"
	WarnUnknownHandoff = "unknown_handoff"
	WarnServiceHalt    = "service_halt"
)

// Warning is a recovered fault inside a single transition.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	EventID string `json:"event_id,omitempty"`
}

// StateWrite records one key written by a state update action during a
// dispatch. The bridge uses these to emit answer-record side effects.
type StateWrite struct {
	Scope Scope  `json:"scope"`
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// DispatchResult is the outcome of one inbound event.
type DispatchResult struct {
	// Matched is false for the documented no-ops: unknown event id or
	// failed conditions. A no-op leaves screen and state untouched.
	Matched bool `json:"matched"`

	// Navigated reports whether a navigate action committed a new screen.
	Navigated bool `json:"navigated"`

	Signal   AgentSignal  `json:"signal"`
	Warnings []Warning    `json:"warnings,omitempty"`
	Writes   []StateWrite `json:"writes,omitempty"`

	// Seq is the run's applied-event sequence after this dispatch.
	Seq uint64 `json:"seq"`
}

// ScreenEvent notifies hooks about entering or leaving a screen.
type ScreenEvent struct {
	RunID    string
	AgentID  string
	ScreenID string
}

// EventDispatched notifies hooks about one processed inbound event.
type EventDispatched struct {
	RunID    string
	EventID  string
	Matched  bool
	ScreenID string
	Seq      uint64
}

// ServiceEvent notifies hooks about an external service call.
type ServiceEvent struct {
	RunID   string
	Service string
	Params  map[string]any
	OK      bool
}

// LifecycleHooks carries optional observability callbacks. Nil members are
// skipped.
type LifecycleHooks struct {
	OnScreenEnter     func(context.Context, *ScreenEvent)
	OnScreenLeave     func(context.Context, *ScreenEvent)
	OnEventDispatched func(context.Context, *EventDispatched)
	OnServiceCall     func(context.Context, *ServiceEvent)
	OnWarning         func(context.Context, *Warning)
}
