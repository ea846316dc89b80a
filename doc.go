/*
Package wayfarer is a screen/event/state interpreter for voice-driven,
agent-guided product flows.

A Journey declares agents, screens, elements, and the events each can fire.
The Interpreter executes those declarations: it evaluates conditions against
scoped run state, applies actions (state updates, navigation, service calls,
close), and resolves the effective screen the client should render. The
voice agent and the UI are both just event sources; the declaration file is
the single source of truth for what happens next.

Typical usage:

	itp, err := wayfarer.New(journey,
		wayfarer.WithServiceCaller(caller),
		wayfarer.WithRecorder(recorder),
	)
	if err != nil { ... }

	run, err := itp.StartRun(ctx, nil)
	res, err := run.Dispatch(ctx, "continue_tapped", "continue_btn", nil)

Each Run serializes its dispatches through a mailbox, so events arriving
while a service call is in flight are queued and replayed in order.
*/
package wayfarer
