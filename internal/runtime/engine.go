// Package runtime is the interpreter core: the scoped state store, the
// screen resolver, the action executor, and the event dispatcher that
// together advance a run through a journey's screens.
package runtime

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

// screenRef indexes a screen with its owning agent ("" for global screens).
type screenRef struct {
	screen  *domain.Screen
	agentID string
}

// Engine interprets events against a single journey definition. It is
// stateless with respect to runs: every method takes the run state it
// should act on, so one engine serves any number of concurrent runs.
type Engine struct {
	journey *domain.Journey
	screens map[string]screenRef
	svc     ports.ServiceCaller
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
}

// Option configures the engine.
type Option func(*Engine)

// WithServiceCaller sets the external service collaborator. Without one,
// every service call resolves as an error and takes the on_error branch.
func WithServiceCaller(svc ports.ServiceCaller) Option {
	return func(e *Engine) { e.svc = svc }
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an engine over a journey plus any global screens shared
// across journeys. Screen ids are indexed journey-wide: a navigate target
// may name a screen of another agent, which also moves the run to that
// agent.
func NewEngine(journey *domain.Journey, globalScreens []domain.Screen, opts ...Option) *Engine {
	e := &Engine{
		journey: journey,
		screens: make(map[string]screenRef),
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}

	for i := range journey.Agents {
		agent := &journey.Agents[i]
		for j := range agent.Screens {
			sc := &agent.Screens[j]
			e.screens[sc.ID] = screenRef{screen: sc, agentID: agent.ID}
		}
	}
	for i := range globalScreens {
		sc := &globalScreens[i]
		if _, taken := e.screens[sc.ID]; !taken {
			e.screens[sc.ID] = screenRef{screen: sc}
		}
	}

	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Journey returns the definition this engine interprets.
func (e *Engine) Journey() *domain.Journey { return e.journey }

// StartRun creates run state positioned at the start agent's first screen,
// seeding the module scope once and the screen scope from the screen's
// declared initial state.
func (e *Engine) StartRun(ctx context.Context, moduleSeed map[string]any) (*domain.RunState, error) {
	agent := e.journey.Agent(e.journey.StartAgent)
	if agent == nil || len(agent.Screens) == 0 {
		return nil, domain.ErrJourneyNotFound
	}
	first := &agent.Screens[0]

	run := domain.NewRunState(uuid.NewString(), e.journey.ID, agent.ID, first.ID, moduleSeed, first.State)
	e.emitScreenEnter(ctx, run)
	return run, nil
}

// Screen returns the definition of the run's current screen, or nil when
// the id no longer resolves (a reference error, not a crash).
func (e *Engine) Screen(run *domain.RunState) *domain.Screen {
	ref, ok := e.screens[run.ScreenID]
	if !ok {
		return nil
	}
	return ref.screen
}

// Resolve computes the effective view of the run's current screen.
func (e *Engine) Resolve(run *domain.RunState) *domain.EffectiveScreen {
	return ResolveEffective(e.Screen(run), run.Merged())
}

// Handoff moves the run to another agent's first screen. The target must be
// listed in the current agent's handoffs; anything else is a warning no-op.
func (e *Engine) Handoff(ctx context.Context, run *domain.RunState, targetAgentID string) *domain.DispatchResult {
	res := &domain.DispatchResult{Seq: run.Seq}

	current := e.journey.Agent(run.AgentID)
	allowed := false
	if current != nil {
		for _, id := range current.Handoffs {
			if id == targetAgentID {
				allowed = true
				break
			}
		}
	}

	target := e.journey.Agent(targetAgentID)
	if !allowed || target == nil || len(target.Screens) == 0 {
		e.warn(ctx, res, domain.Warning{
			Code:    domain.WarnUnknownHandoff,
			Message: "handoff target not reachable: " + targetAgentID,
		})
		res.Signal = e.signalFor(run)
		return res
	}

	e.emitScreenLeave(ctx, run)
	run.AgentID = target.ID
	run.ScreenID = target.Screens[0].ID
	NewStore(run).ResetScreen(target.Screens[0].State)
	e.emitScreenEnter(ctx, run)

	res.Matched = true
	res.Navigated = true
	res.Signal = e.signalFor(run)
	return res
}

// signalFor derives the outbound agent signal from current run state.
func (e *Engine) signalFor(run *domain.RunState) domain.AgentSignal {
	sig := domain.AgentSignal{
		ScreenID:  run.ScreenID,
		AgentID:   run.AgentID,
		Completed: run.Status == domain.RunCompleted,
	}
	if sig.Completed {
		if reason, ok := run.CompletionReason["reason"].(string); ok {
			sig.CompletionReason = reason
		}
	}
	return sig
}

func (e *Engine) warn(ctx context.Context, res *domain.DispatchResult, w domain.Warning) {
	res.Warnings = append(res.Warnings, w)
	e.logger.Warn("dispatch warning", "code", w.Code, "msg", w.Message, "event_id", w.EventID)
	if e.hooks.OnWarning != nil {
		e.hooks.OnWarning(ctx, &w)
	}
}

func (e *Engine) emitScreenEnter(ctx context.Context, run *domain.RunState) {
	if e.hooks.OnScreenEnter != nil {
		e.hooks.OnScreenEnter(ctx, &domain.ScreenEvent{RunID: run.RunID, AgentID: run.AgentID, ScreenID: run.ScreenID})
	}
}

func (e *Engine) emitScreenLeave(ctx context.Context, run *domain.RunState) {
	if e.hooks.OnScreenLeave != nil {
		e.hooks.OnScreenLeave(ctx, &domain.ScreenEvent{RunID: run.RunID, AgentID: run.AgentID, ScreenID: run.ScreenID})
	}
}
