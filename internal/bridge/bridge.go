// Package bridge is the single touch point between the interpreter and the
// voice-agent runtime: inbound tool calls become event dispatches, dispatch
// outcomes become agent signals, and answer-shaped state writes fan out to
// the persistence collaborator.
package bridge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/runtime"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

// AnswerKeyPrefix marks state keys the bridge treats as captured user
// answers worth recording.
const AnswerKeyPrefix = "answer."

// Bridge translates between tool calls and events. It performs no business
// logic beyond the translation and the answer-record side effect.
type Bridge struct {
	engine   *runtime.Engine
	recorder ports.AnswerRecorder
	logger   *slog.Logger
}

// Option configures the bridge.
type Option func(*Bridge)

// WithRecorder sets the answer/transcript sink. Without one, answer-shaped
// writes are simply not recorded.
func WithRecorder(rec ports.AnswerRecorder) Option {
	return func(b *Bridge) { b.recorder = rec }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a bridge over the interpreter engine.
func New(engine *runtime.Engine, opts ...Option) *Bridge {
	b := &Bridge{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// OnToolCall maps an inbound voice-agent tool invocation to an event
// dispatch. The tool name IS the event id (1:1 by convention) and the tool
// arguments are merged transiently into condition evaluation, never
// persisted. Tool calls address screen-global events; element events belong
// to direct user interaction.
func (b *Bridge) OnToolCall(ctx context.Context, run *domain.RunState, toolName string, args map[string]any) *domain.DispatchResult {
	screenID := run.ScreenID
	res := b.engine.Dispatch(ctx, run, toolName, "", args)
	b.recordAnswers(ctx, run, screenID, "", res)
	return res
}

// OnUserEvent forwards a user interaction (optionally element-scoped)
// through the same recording path.
func (b *Bridge) OnUserEvent(ctx context.Context, run *domain.RunState, eventID, elementID string, args map[string]any) *domain.DispatchResult {
	screenID := run.ScreenID
	res := b.engine.Dispatch(ctx, run, eventID, elementID, args)
	b.recordAnswers(ctx, run, screenID, elementID, res)
	return res
}

// Signal extracts the outbound agent signal from a dispatch result. Kept as
// an explicit method so transports depend on the bridge, not the engine.
func (b *Bridge) Signal(res *domain.DispatchResult) domain.AgentSignal {
	return res.Signal
}

// recordAnswers emits record calls for writes that look like captured user
// answers. The payload schema is owned by the collaborator; failures are
// logged and swallowed, never surfaced into the run.
func (b *Bridge) recordAnswers(ctx context.Context, run *domain.RunState, screenID, elementID string, res *domain.DispatchResult) {
	if b.recorder == nil {
		return
	}
	for _, w := range res.Writes {
		if !strings.HasPrefix(w.Key, AnswerKeyPrefix) {
			continue
		}
		rec := ports.AnswerRecord{
			RunID:     run.RunID,
			JourneyID: run.JourneyID,
			ScreenID:  screenID,
			ElementID: elementID,
			Key:       strings.TrimPrefix(w.Key, AnswerKeyPrefix),
			Value:     w.Value,
		}
		if err := b.recorder.RecordAnswer(ctx, rec); err != nil {
			b.logger.Warn("answer record failed", "key", rec.Key, "run_id", run.RunID, "err", err)
		}
	}
}
