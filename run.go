package wayfarer

import (
	"context"
	"sync"
	"time"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

type envelopeKind int

const (
	envEvent envelopeKind = iota
	envToolCall
	envHandoff
	envDelay
)

type envelope struct {
	kind      envelopeKind
	eventID   string
	elementID string
	args      map[string]any
	target    string
	screenID  string // delay envelopes: the screen the timer was armed on
	reply     chan outcome
}

type outcome struct {
	res *domain.DispatchResult
	err error
}

// Run is a live handle on one journey run. All dispatches funnel through a
// single mailbox goroutine, so events that arrive while a service call is
// blocking are queued and replayed in arrival order rather than interleaved.
type Run struct {
	id  string
	itp *Interpreter

	mailbox chan envelope
	quit    chan struct{}
	once    sync.Once

	timerMu sync.Mutex
	timers  []*time.Timer
}

func newRun(itp *Interpreter, id string) *Run {
	r := &Run{
		id:      id,
		itp:     itp,
		mailbox: make(chan envelope, 64),
		quit:    make(chan struct{}),
	}
	go r.loop()
	return r
}

// ID returns the run identifier.
func (r *Run) ID() string { return r.id }

// Dispatch delivers a UI event. elementID scopes the lookup to that
// element's events; leave it empty for screen-level events. args is
// transient evaluation context, visible to conditions and templates for
// this dispatch only.
func (r *Run) Dispatch(ctx context.Context, eventID, elementID string, args map[string]any) (*domain.DispatchResult, error) {
	return r.submit(ctx, envelope{
		kind:      envEvent,
		eventID:   eventID,
		elementID: elementID,
		args:      args,
	})
}

// HandleToolCall delivers an agent tool call. The tool name addresses a
// screen-level event; the arguments become transient context.
func (r *Run) HandleToolCall(ctx context.Context, tool string, args map[string]any) (*domain.DispatchResult, error) {
	return r.submit(ctx, envelope{
		kind:    envToolCall,
		eventID: tool,
		args:    args,
	})
}

// Handoff transfers the run to another agent declared in the current
// agent's handoff list.
func (r *Run) Handoff(ctx context.Context, agentID string) (*domain.DispatchResult, error) {
	return r.submit(ctx, envelope{
		kind:   envHandoff,
		target: agentID,
	})
}

// Screen resolves the effective screen for the run's current state.
func (r *Run) Screen(ctx context.Context) (*domain.EffectiveScreen, error) {
	state, err := r.itp.manager.Load(ctx, r.id)
	if err != nil {
		return nil, err
	}
	return r.itp.engine.Resolve(state), nil
}

// Done reports whether the run has completed.
func (r *Run) Done(ctx context.Context) (bool, error) {
	state, err := r.itp.manager.Load(ctx, r.id)
	if err != nil {
		return false, err
	}
	return state.Status == domain.RunCompleted, nil
}

// State returns a snapshot of the persisted run state.
func (r *Run) State(ctx context.Context) (*domain.RunState, error) {
	state, err := r.itp.manager.Load(ctx, r.id)
	if err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// Close stops the mailbox and cancels pending delay timers. Persisted run
// state is untouched; the run can be resumed later via Interpreter.Run.
func (r *Run) Close() {
	r.once.Do(func() {
		close(r.quit)
		r.stopTimers()
		r.itp.untrack(r.id)
	})
}

func (r *Run) submit(ctx context.Context, env envelope) (*domain.DispatchResult, error) {
	env.reply = make(chan outcome, 1)

	select {
	case r.mailbox <- env:
	case <-r.quit:
		return nil, domain.ErrRunClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case out := <-env.reply:
		return out.res, out.err
	case <-r.quit:
		return nil, domain.ErrRunClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Run) loop() {
	for {
		select {
		case <-r.quit:
			r.drain()
			return
		case env := <-r.mailbox:
			r.handle(env)
		}
	}
}

// drain fails any envelopes queued behind the close.
func (r *Run) drain() {
	for {
		select {
		case env := <-r.mailbox:
			if env.reply != nil {
				env.reply <- outcome{err: domain.ErrRunClosed}
			}
		default:
			return
		}
	}
}

func (r *Run) handle(env envelope) {
	// The mailbox owns the dispatch lifecycle; caller contexts only bound
	// the wait, not the execution.
	ctx := context.Background()

	var res *domain.DispatchResult
	err := r.itp.manager.WithLock(ctx, r.id, func(ctx context.Context) error {
		state, err := r.itp.manager.Store().Load(ctx, r.id)
		if err != nil {
			return err
		}

		if env.kind == envDelay && state.ScreenID != env.screenID {
			// Navigated away before the timer fired.
			return nil
		}

		switch env.kind {
		case envToolCall:
			res = r.itp.bridge.OnToolCall(ctx, state, env.eventID, env.args)
		case envHandoff:
			res = r.itp.engine.Handoff(ctx, state, env.target)
		default:
			res = r.itp.bridge.OnUserEvent(ctx, state, env.eventID, env.elementID, env.args)
		}

		return r.itp.manager.Store().Save(ctx, r.id, state)
	})

	if err == nil && res != nil {
		if res.Navigated {
			r.scheduleDelays(res.Signal.ScreenID)
		}
		if res.Signal.Completed {
			r.stopTimers()
		}
	}

	if env.reply != nil {
		env.reply <- outcome{res: res, err: err}
	}
}

// scheduleDelays arms timers for the screen's delay-triggered events,
// replacing any timers from the previous screen.
func (r *Run) scheduleDelays(screenID string) {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()

	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = r.timers[:0]

	for _, ev := range r.itp.engine.DelayEvents(screenID) {
		eventID := ev.ID
		d := time.Duration(ev.DelayMS) * time.Millisecond
		r.timers = append(r.timers, time.AfterFunc(d, func() {
			select {
			case r.mailbox <- envelope{kind: envDelay, eventID: eventID, screenID: screenID}:
			case <-r.quit:
			}
		}))
	}
}

func (r *Run) stopTimers() {
	r.timerMu.Lock()
	defer r.timerMu.Unlock()
	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = r.timers[:0]
}
