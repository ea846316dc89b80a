package runtime

import (
	"context"

	"github.com/wayfarerhq/wayfarer/internal/rules"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Dispatch processes one inbound event against the run. Lookup order,
// first match wins:
//
//  1. when sourceElementID is given, only that element's own events are
//     searched;
//  2. otherwise the current screen's global events are searched;
//  3. there is no fallback across screens or agents. An unmatched id is a
//     no-op, not an error: the agent runtime may legitimately reference an
//     event of a screen that was already navigated away from.
//
// All of the matched event's conditions must pass (AND) against the merged
// state plus the transient extra context; otherwise the event does not fire
// and nothing mutates. When it fires, the action list runs sequentially and
// synchronously in declaration order.
func (e *Engine) Dispatch(ctx context.Context, run *domain.RunState, eventID, sourceElementID string, extra map[string]any) *domain.DispatchResult {
	res := &domain.DispatchResult{Seq: run.Seq}

	if run.Status == domain.RunCompleted {
		res.Signal = e.signalFor(run)
		return res
	}

	screen := e.Screen(run)
	if screen == nil {
		e.warn(ctx, res, domain.Warning{
			Code:    domain.WarnUnknownScreen,
			Message: "current screen not found: " + run.ScreenID,
			EventID: eventID,
		})
		res.Signal = e.signalFor(run)
		return res
	}

	event := e.lookupEvent(screen, eventID, sourceElementID)
	if event == nil {
		e.logger.Debug("event did not match current screen", "event_id", eventID, "screen_id", run.ScreenID)
		res.Signal = e.signalFor(run)
		return res
	}

	if !rules.AllPass(event.Conditions, e.evalContext(run, extra)) {
		e.logger.Debug("event conditions failed", "event_id", eventID, "screen_id", run.ScreenID)
		res.Signal = e.signalFor(run)
		return res
	}

	run.Seq++
	res.Matched = true

	outcome := e.runActions(ctx, run, res, eventID, event.Actions, extra)
	res.Navigated = outcome.navigated
	res.Seq = run.Seq
	res.Signal = e.signalFor(run)

	if e.hooks.OnEventDispatched != nil {
		e.hooks.OnEventDispatched(ctx, &domain.EventDispatched{
			RunID:    run.RunID,
			EventID:  eventID,
			Matched:  true,
			ScreenID: run.ScreenID,
			Seq:      run.Seq,
		})
	}

	return res
}

func (e *Engine) lookupEvent(screen *domain.Screen, eventID, sourceElementID string) *domain.Event {
	if sourceElementID != "" {
		el := screen.Element(sourceElementID)
		if el == nil {
			return nil
		}
		return el.Event(eventID)
	}
	return screen.Event(eventID)
}

// DelayEvents returns the screen's delay-triggered events, used by the run
// mailbox to schedule timers on screen entry. Timers are bound to the
// scheduling screen and canceled when the run navigates away before firing.
func (e *Engine) DelayEvents(screenID string) []domain.Event {
	ref, ok := e.screens[screenID]
	if !ok {
		return nil
	}
	var out []domain.Event
	for i := range ref.screen.Events {
		ev := ref.screen.Events[i]
		if ev.Trigger == domain.TriggerDelay && ev.DelayMS > 0 {
			out = append(out, ev)
		}
	}
	return out
}
