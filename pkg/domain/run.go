package domain

import "time"

// RunStatus is the lifecycle phase of a run.
type RunStatus string

const (
	RunActive    RunStatus = "active"
	RunCompleted RunStatus = "completed"
)

// RunState is the full runtime value of one journey run: where it is, the
// scoped state bags, and bookkeeping for idempotence/debugging. It is what
// a RunStore persists between dispatches in stateless deployments.
type RunState struct {
	RunID     string `json:"run_id"`
	JourneyID string `json:"journey_id"`
	AgentID   string `json:"agent_id"`
	ScreenID  string `json:"screen_id"`

	// Module persists for the run's lifetime; Screen is replaced wholesale
	// on every navigation. Screen shadows Module on key collision when the
	// two are merged for evaluation.
	Module map[string]any `json:"module"`
	Screen map[string]any `json:"screen"`

	// Seq counts applied events (events that matched and whose conditions
	// passed), monotonically increasing.
	Seq uint64 `json:"seq"`

	Status           RunStatus      `json:"status"`
	Completed        bool           `json:"completed"`
	CompletionReason map[string]any `json:"completion_reason,omitempty"`

	StartedAt time.Time `json:"started_at,omitempty"`
}

// NewRunState creates a run positioned at the given agent/screen with the
// module scope seeded once and the screen scope seeded from screenState.
func NewRunState(runID, journeyID, agentID, screenID string, moduleSeed, screenSeed map[string]any) *RunState {
	r := &RunState{
		RunID:     runID,
		JourneyID: journeyID,
		AgentID:   agentID,
		ScreenID:  screenID,
		Module:    make(map[string]any),
		Screen:    make(map[string]any),
		Status:    RunActive,
		StartedAt: time.Now().UTC(),
	}
	for k, v := range moduleSeed {
		r.Module[k] = v
	}
	for k, v := range screenSeed {
		r.Screen[k] = v
	}
	return r
}

// Merged returns module scope overlaid by screen scope. The result is a
// fresh map; mutating it does not touch the run.
func (r *RunState) Merged() map[string]any {
	out := make(map[string]any, len(r.Module)+len(r.Screen))
	for k, v := range r.Module {
		out[k] = v
	}
	for k, v := range r.Screen {
		out[k] = v
	}
	return out
}

// Clone deep-copies the scope maps so callers can mutate safely.
func (r *RunState) Clone() *RunState {
	if r == nil {
		return nil
	}
	next := *r
	next.Module = make(map[string]any, len(r.Module))
	for k, v := range r.Module {
		next.Module[k] = v
	}
	next.Screen = make(map[string]any, len(r.Screen))
	for k, v := range r.Screen {
		next.Screen[k] = v
	}
	if r.CompletionReason != nil {
		next.CompletionReason = make(map[string]any, len(r.CompletionReason))
		for k, v := range r.CompletionReason {
			next.CompletionReason[k] = v
		}
	}
	return &next
}
