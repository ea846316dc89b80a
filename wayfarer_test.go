package wayfarer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

func facadeJourney() *domain.Journey {
	return &domain.Journey{
		ID:         "onboarding",
		StartAgent: "greeter",
		Agents: []domain.Agent{
			{
				ID:       "greeter",
				Handoffs: []string{"closer"},
				Screens: []domain.Screen{
					{
						ID:    "welcome",
						State: map[string]any{"tapped": false},
						Events: []domain.Event{
							{
								ID:      "continue",
								Trigger: domain.TriggerSelection,
								Actions: []domain.Action{domain.Navigate("details")},
							},
							{
								ID:      "verify",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.ServiceCall("verify_identity", map[string]any{"name": "{{name}}"},
										[]domain.Action{domain.StateUpdate(domain.ScopeModule, map[string]any{"verified": true})},
										[]domain.Action{domain.StateUpdate(domain.ScopeModule, map[string]any{"verified": false})},
									),
								},
							},
							{
								ID:      "note",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.StateUpdate(domain.ScopeModule, map[string]any{"note": "{{text}}"}),
								},
							},
						},
					},
					{
						ID: "details",
						Events: []domain.Event{
							{
								ID:      "capture_name",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.StateUpdate(domain.ScopeModule, map[string]any{"answer.name": "{{name}}"}),
								},
							},
						},
					},
				},
			},
			{
				ID: "closer",
				Screens: []domain.Screen{
					{
						ID: "wrap",
						Events: []domain.Event{
							{
								ID:      "finish",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{domain.Close(true, map[string]any{"reason": "done"})},
							},
						},
					},
				},
			},
		},
	}
}

func TestInterpreter_StartAndDispatch(t *testing.T) {
	itp, err := wayfarer.New(facadeJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, map[string]any{"plan": "pro"})
	require.NoError(t, err)

	screen, err := run.Screen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "welcome", screen.ID)

	res, err := run.Dispatch(ctx, "continue", "", nil)
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.True(t, res.Navigated)
	assert.Equal(t, "details", res.Signal.ScreenID)

	state, err := run.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "details", state.ScreenID)
	assert.Equal(t, "pro", state.Module["plan"])
}

func TestInterpreter_ResumeRun(t *testing.T) {
	itp, err := wayfarer.New(facadeJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, nil)
	require.NoError(t, err)
	id := run.ID()

	_, err = run.Dispatch(ctx, "continue", "", nil)
	require.NoError(t, err)
	run.Close()

	resumed, err := itp.Run(ctx, id)
	require.NoError(t, err)

	res, err := resumed.HandleToolCall(ctx, "capture_name", map[string]any{"name": "ada"})
	require.NoError(t, err)
	assert.True(t, res.Matched)

	state, err := resumed.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada", state.Module["answer.name"])
}

func TestInterpreter_RunNotFound(t *testing.T) {
	itp, err := wayfarer.New(facadeJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	_, err = itp.Run(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestInterpreter_RejectsInvalidJourney(t *testing.T) {
	j := facadeJourney()
	j.StartAgent = "nobody"

	_, err := wayfarer.New(j)
	assert.Error(t, err)
}

// Events that arrive while a service call blocks must queue and replay in
// arrival order, not interleave with the suspended dispatch.
func TestRun_QueuesEventsDuringServiceCall(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	caller := ports.ServiceCallerFunc(func(ctx context.Context, name string, params map[string]any) (ports.ServiceResult, error) {
		close(started)
		<-release
		return ports.ServiceResult{OK: true}, nil
	})

	itp, err := wayfarer.New(facadeJourney(), wayfarer.WithServiceCaller(caller))
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, nil)
	require.NoError(t, err)

	var (
		wg    sync.WaitGroup
		order []string
		mu    sync.Mutex
	)
	record := func(label string) {
		mu.Lock()
		order = append(order, label)
		mu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		res, err := run.Dispatch(ctx, "verify", "", nil)
		assert.NoError(t, err)
		assert.True(t, res.Matched)
		record("verify")
	}()
	go func() {
		defer wg.Done()
		<-started // ensure the service call is in flight before queuing
		done := make(chan struct{})
		go func() {
			res, err := run.Dispatch(ctx, "note", "", map[string]any{"text": "queued"})
			assert.NoError(t, err)
			assert.True(t, res.Matched)
			record("note")
			close(done)
		}()
		// The queued dispatch must not complete while the call blocks.
		select {
		case <-done:
			t.Error("queued event ran while service call was in flight")
		case <-time.After(50 * time.Millisecond):
		}
		close(release)
		<-done
	}()
	wg.Wait()

	assert.Equal(t, []string{"verify", "note"}, order)

	state, err := run.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, true, state.Module["verified"])
	assert.Equal(t, "queued", state.Module["note"])
}

func TestRun_HandoffAndClose(t *testing.T) {
	itp, err := wayfarer.New(facadeJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, nil)
	require.NoError(t, err)

	res, err := run.Handoff(ctx, "closer")
	require.NoError(t, err)
	assert.Equal(t, "closer", res.Signal.AgentID)
	assert.Equal(t, "wrap", res.Signal.ScreenID)

	res, err = run.Dispatch(ctx, "finish", "", nil)
	require.NoError(t, err)
	assert.True(t, res.Signal.Completed)
	assert.Equal(t, "done", res.Signal.CompletionReason)

	// Completed runs ignore further events.
	res, err = run.Dispatch(ctx, "finish", "", nil)
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestRun_ClosedHandleRejectsDispatch(t *testing.T) {
	itp, err := wayfarer.New(facadeJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	run, err := itp.StartRun(context.Background(), nil)
	require.NoError(t, err)
	run.Close()

	_, err = run.Dispatch(context.Background(), "continue", "", nil)
	assert.ErrorIs(t, err, domain.ErrRunClosed)
}

func delayJourney() *domain.Journey {
	return &domain.Journey{
		ID:         "timed",
		StartAgent: "a",
		Agents: []domain.Agent{
			{
				ID: "a",
				Screens: []domain.Screen{
					{
						ID: "splash",
						Events: []domain.Event{
							{
								ID:      "auto_advance",
								Trigger: domain.TriggerDelay,
								DelayMS: 30,
								Actions: []domain.Action{domain.Navigate("home")},
							},
							{
								ID:      "skip",
								Trigger: domain.TriggerSelection,
								Actions: []domain.Action{domain.Navigate("home")},
							},
						},
					},
					{ID: "home"},
				},
			},
		},
	}
}

func TestRun_DelayEventFires(t *testing.T) {
	itp, err := wayfarer.New(delayJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		state, err := run.State(ctx)
		return err == nil && state.ScreenID == "home"
	}, time.Second, 10*time.Millisecond, "delay event should auto-advance the screen")
}

func TestRun_DelayCanceledByNavigation(t *testing.T) {
	itp, err := wayfarer.New(delayJourney())
	require.NoError(t, err)
	defer itp.Shutdown()

	ctx := context.Background()
	run, err := itp.StartRun(ctx, nil)
	require.NoError(t, err)

	res, err := run.Dispatch(ctx, "skip", "", nil)
	require.NoError(t, err)
	require.True(t, res.Navigated)

	seq := res.Seq
	time.Sleep(80 * time.Millisecond)

	state, err := run.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "home", state.ScreenID)
	assert.Equal(t, seq, state.Seq, "stale delay timer must not dispatch after navigating away")
}
