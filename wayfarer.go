package wayfarer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wayfarerhq/wayfarer/internal/bridge"
	"github.com/wayfarerhq/wayfarer/internal/compiler"
	"github.com/wayfarerhq/wayfarer/internal/runtime"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/memory"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
	"github.com/wayfarerhq/wayfarer/pkg/session"
)

// Interpreter is the high-level entry point for the library. It wraps the
// internal runtime, the agent bridge, and a run manager, and hands out Run
// handles that serialize dispatches per run.
type Interpreter struct {
	engine  *runtime.Engine
	bridge  *bridge.Bridge
	manager *session.Manager

	store    ports.RunStore
	locker   ports.DistributedLocker
	svc      ports.ServiceCaller
	recorder ports.AnswerRecorder
	hooks    domain.LifecycleHooks
	globals  []domain.Screen
	logger   *slog.Logger

	mu   sync.Mutex
	runs map[string]*Run
}

// Option defines a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStore sets the run persistence backend. Defaults to in-memory.
func WithStore(store ports.RunStore) Option {
	return func(i *Interpreter) {
		i.store = store
	}
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(i *Interpreter) {
		i.locker = locker
	}
}

// WithServiceCaller sets the backend invoked by service_call actions.
func WithServiceCaller(svc ports.ServiceCaller) Option {
	return func(i *Interpreter) {
		i.svc = svc
	}
}

// WithRecorder sets the sink for captured user answers.
func WithRecorder(rec ports.AnswerRecorder) Option {
	return func(i *Interpreter) {
		i.recorder = rec
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(i *Interpreter) {
		i.hooks = hooks
	}
}

// WithGlobalScreens registers journey-independent screens (e.g. shared
// error or loading screens) that any journey can navigate to.
func WithGlobalScreens(screens []domain.Screen) Option {
	return func(i *Interpreter) {
		i.globals = screens
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Interpreter) {
		i.logger = logger
	}
}

// New builds an Interpreter for the given journey. The journey is validated
// first; any error-severity finding makes New fail.
func New(journey *domain.Journey, opts ...Option) (*Interpreter, error) {
	if journey == nil {
		return nil, fmt.Errorf("journey is required")
	}

	itp := &Interpreter{
		runs: make(map[string]*Run),
	}
	for _, opt := range opts {
		opt(itp)
	}

	for _, issue := range compiler.Validate(journey, itp.globals) {
		if issue.Severity == compiler.SeverityError {
			return nil, fmt.Errorf("invalid journey %q: %s", journey.ID, issue)
		}
	}

	if itp.logger == nil {
		itp.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	itp.logger = itp.logger.With("journey", journey.ID)

	if itp.store == nil {
		itp.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(itp.logger)}
	if itp.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(itp.locker))
	}
	itp.manager = session.NewManager(itp.store, managerOpts...)

	itp.engine = runtime.NewEngine(journey, itp.globals,
		runtime.WithServiceCaller(itp.svc),
		runtime.WithLifecycleHooks(itp.hooks),
		runtime.WithLogger(itp.logger),
	)
	itp.bridge = bridge.New(itp.engine,
		bridge.WithRecorder(itp.recorder),
		bridge.WithLogger(itp.logger),
	)

	return itp, nil
}

// Journey returns the journey definition this interpreter executes.
func (i *Interpreter) Journey() *domain.Journey {
	return i.engine.Journey()
}

// Manager returns the run manager, for adapters that drive the
// load-dispatch-save cycle themselves.
func (i *Interpreter) Manager() *session.Manager {
	return i.manager
}

// StartRun creates a new run on the journey's start screen, persists it,
// and returns a live handle. moduleSeed pre-populates module-scoped state.
func (i *Interpreter) StartRun(ctx context.Context, moduleSeed map[string]any) (*Run, error) {
	state, err := i.engine.StartRun(ctx, moduleSeed)
	if err != nil {
		return nil, err
	}
	if err := i.manager.Save(ctx, state.RunID, state); err != nil {
		return nil, fmt.Errorf("failed to persist new run: %w", err)
	}

	run := newRun(i, state.RunID)
	i.track(run)
	run.scheduleDelays(state.ScreenID)

	i.logger.Info("run started",
		"run_id", state.RunID,
		"agent", state.AgentID,
		"screen", state.ScreenID,
	)
	return run, nil
}

// Run returns the live handle for an existing run, resuming it from the
// store if this instance has no handle yet.
func (i *Interpreter) Run(ctx context.Context, runID string) (*Run, error) {
	i.mu.Lock()
	if run, ok := i.runs[runID]; ok {
		i.mu.Unlock()
		return run, nil
	}
	i.mu.Unlock()

	state, err := i.manager.Load(ctx, runID)
	if err != nil {
		return nil, err
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if run, ok := i.runs[runID]; ok {
		return run, nil
	}
	run := newRun(i, runID)
	i.runs[runID] = run
	if state.Status == domain.RunActive {
		run.scheduleDelays(state.ScreenID)
	}
	return run, nil
}

// Runs lists run IDs known to the store.
func (i *Interpreter) Runs(ctx context.Context) ([]string, error) {
	return i.manager.List(ctx)
}

// Shutdown stops every live run handle. Persisted state is untouched.
func (i *Interpreter) Shutdown() {
	i.mu.Lock()
	runs := make([]*Run, 0, len(i.runs))
	for _, r := range i.runs {
		runs = append(runs, r)
	}
	i.mu.Unlock()

	for _, r := range runs {
		r.Close()
	}
}

func (i *Interpreter) track(run *Run) {
	i.mu.Lock()
	i.runs[run.id] = run
	i.mu.Unlock()
}

func (i *Interpreter) untrack(runID string) {
	i.mu.Lock()
	delete(i.runs, runID)
	i.mu.Unlock()
}
