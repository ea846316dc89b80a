package runtime

import (
	"context"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// listOutcome reports why an action list stopped. Navigation and close are
// both terminal for the batch that contains them.
type listOutcome struct {
	navigated bool
	closed    bool
}

// runActions executes an action list sequentially, in declaration order.
// The named rules live here, not as emergent loop behavior:
//
//   - navigate commits the target screen, reseeds screen scope, and stops
//     the list; subsequent siblings never run against the old screen.
//   - a navigate to an unknown screen is a warning no-op; the list
//     continues on the current screen.
//   - a service call resolves synchronously through the service port; its
//     on_success or on_error branch then runs IN PLACE OF the remaining
//     siblings (which are dropped either way).
//   - a failed service call with no on_error branch halts the batch.
//   - close terminates the run and stops the list.
//   - unknown action types warn and continue.
func (e *Engine) runActions(ctx context.Context, run *domain.RunState, res *domain.DispatchResult, eventID string, actions []domain.Action, extra map[string]any) listOutcome {
	var out listOutcome
	store := NewStore(run)

	for i := range actions {
		a := &actions[i]

		switch a.Type {
		case domain.ActionNavigate:
			ref, ok := e.screens[a.Target]
			if !ok {
				e.warn(ctx, res, domain.Warning{
					Code:    domain.WarnUnknownScreen,
					Message: "navigate target not found: " + a.Target,
					EventID: eventID,
				})
				continue
			}
			e.emitScreenLeave(ctx, run)
			run.ScreenID = ref.screen.ID
			if ref.agentID != "" {
				run.AgentID = ref.agentID
			}
			store.ResetScreen(ref.screen.State)
			e.emitScreenEnter(ctx, run)
			out.navigated = true
			return out

		case domain.ActionStateUpdate:
			// Values may reference merged state or transient tool args via
			// {{placeholder}} templates; this is how a tool call's arguments
			// land in run state.
			values := resolveTemplates(a.Values, e.evalContext(run, extra))
			store.SetMany(a.Scope, values)
			for k, v := range values {
				res.Writes = append(res.Writes, domain.StateWrite{Scope: a.Scope, Key: k, Value: v})
			}

		case domain.ActionServiceCall:
			branchOut := e.runServiceCall(ctx, run, res, eventID, a, extra)
			out.navigated = out.navigated || branchOut.navigated
			out.closed = out.closed || branchOut.closed
			// The branch replaced this action's remaining siblings.
			return out

		case domain.ActionClose:
			run.Status = domain.RunCompleted
			run.Completed = a.Completed
			run.CompletionReason = a.Reason
			out.closed = true
			return out

		default:
			e.warn(ctx, res, domain.Warning{
				Code:    domain.WarnUnknownAction,
				Message: "unknown action type: " + a.Type,
				EventID: eventID,
			})
		}
	}

	return out
}

// runServiceCall is the run's only suspension point: it blocks on the
// external call and splices the matching branch in, recursively subject to
// the same navigate-stops-the-list rule.
func (e *Engine) runServiceCall(ctx context.Context, run *domain.RunState, res *domain.DispatchResult, eventID string, a *domain.Action, extra map[string]any) listOutcome {
	params := resolveTemplates(a.Params, e.evalContext(run, extra))

	ok := false
	if e.svc != nil {
		result, err := e.svc.Call(ctx, a.Service, params)
		ok = err == nil && result.OK
		if err != nil {
			e.logger.Warn("service call failed", "service", a.Service, "err", err)
		}
	} else {
		e.logger.Warn("service call without a caller configured", "service", a.Service)
	}

	if e.hooks.OnServiceCall != nil {
		e.hooks.OnServiceCall(ctx, &domain.ServiceEvent{
			RunID:   run.RunID,
			Service: a.Service,
			Params:  params,
			OK:      ok,
		})
	}

	branch := a.OnSuccess
	if !ok {
		branch = a.OnError
		if len(branch) == 0 {
			// Valid but explicit authoring choice: the batch halts here.
			e.warn(ctx, res, domain.Warning{
				Code:    domain.WarnServiceHalt,
				Message: "service call failed with no on_error branch: " + a.Service,
				EventID: eventID,
			})
			return listOutcome{}
		}
	}

	return e.runActions(ctx, run, res, eventID, branch, extra)
}

// evalContext merges run state with transient context (e.g. tool-call
// args). Transient keys shadow state but are never persisted.
func (e *Engine) evalContext(run *domain.RunState, extra map[string]any) map[string]any {
	merged := run.Merged()
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
