package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/runtime"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// withEventActions swaps go_b's action list on screen A.
func withEventActions(actions ...domain.Action) *domain.Journey {
	j := testJourney()
	j.Agents[0].Screens[0].Events[0].Actions = actions
	return j
}

func TestExecutor_NavigateStopsTheList(t *testing.T) {
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"before": true}),
		domain.Navigate("B"),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"after": true}),
	)
	eng := runtime.NewEngine(j, nil)
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.True(t, res.Navigated)
	assert.Equal(t, true, run.Module["before"])
	_, ran := run.Module["after"]
	assert.False(t, ran, "actions after a navigate must not run")
}

func TestExecutor_MissingNavigateTargetWarnsAndContinues(t *testing.T) {
	j := withEventActions(
		domain.Navigate("nowhere"),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"reached": true}),
	)
	eng := runtime.NewEngine(j, nil)
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.True(t, res.Matched)
	assert.False(t, res.Navigated)
	assert.Equal(t, "A", run.ScreenID, "run stays on the current screen")
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnUnknownScreen, res.Warnings[0].Code)
	// The no-op navigate does not suppress its siblings.
	assert.Equal(t, true, run.Module["reached"])
}

func TestExecutor_UnknownActionWarnsAndContinues(t *testing.T) {
	j := withEventActions(
		domain.Action{Type: "teleport"},
		domain.StateUpdate(domain.ScopeModule, map[string]any{"reached": true}),
	)
	eng := runtime.NewEngine(j, nil)
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnUnknownAction, res.Warnings[0].Code)
	assert.Equal(t, true, run.Module["reached"])
}

func TestExecutor_ServiceErrorBranchReplacesSiblings(t *testing.T) {
	// With actions
	//   [a=1, service(onError=[a=2]), a=3]
	// a failing call ends with a=2 because the branch runs in place of the
	// remaining siblings.
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 1}),
		domain.ServiceCall("flaky", nil,
			nil,
			[]domain.Action{domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 2})},
		),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 3}),
	)
	svc := &stubCaller{ok: map[string]bool{"flaky": false}}
	eng := runtime.NewEngine(j, nil, runtime.WithServiceCaller(svc))
	run, _ := eng.StartRun(context.Background(), nil)

	eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.Equal(t, 2, run.Merged()["a"])
}

func TestExecutor_ServiceSuccessBranchReplacesSiblings(t *testing.T) {
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 1}),
		domain.ServiceCall("steady", nil,
			[]domain.Action{domain.StateUpdate(domain.ScopeModule, map[string]any{"ok": true})},
			nil,
		),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 3}),
	)
	svc := &stubCaller{ok: map[string]bool{"steady": true}}
	eng := runtime.NewEngine(j, nil, runtime.WithServiceCaller(svc))
	run, _ := eng.StartRun(context.Background(), nil)

	eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.Equal(t, 1, run.Merged()["a"])
	assert.Equal(t, true, run.Merged()["ok"])
}

func TestExecutor_ServiceFailureWithoutOnErrorHaltsBatch(t *testing.T) {
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 1}),
		domain.ServiceCall("flaky", nil, nil, nil),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"a": 3}),
	)
	svc := &stubCaller{ok: map[string]bool{"flaky": false}}
	eng := runtime.NewEngine(j, nil, runtime.WithServiceCaller(svc))
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	// Applied writes before the failure stay applied: no rollback.
	assert.Equal(t, 1, run.Merged()["a"])
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, domain.WarnServiceHalt, res.Warnings[0].Code)
}

func TestExecutor_NavigateInsideServiceBranchStopsEverything(t *testing.T) {
	j := withEventActions(
		domain.ServiceCall("steady", nil,
			[]domain.Action{
				domain.Navigate("B"),
				domain.StateUpdate(domain.ScopeModule, map[string]any{"after_nav": true}),
			},
			nil,
		),
		domain.StateUpdate(domain.ScopeModule, map[string]any{"sibling": true}),
	)
	svc := &stubCaller{ok: map[string]bool{"steady": true}}
	eng := runtime.NewEngine(j, nil, runtime.WithServiceCaller(svc))
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.True(t, res.Navigated)
	assert.Equal(t, "B", run.ScreenID)
	assert.NotContains(t, run.Module, "after_nav")
	assert.NotContains(t, run.Module, "sibling")
}

func TestExecutor_ServiceParamsAreTemplated(t *testing.T) {
	j := withEventActions(
		domain.ServiceCall("lookup", map[string]any{
			"user":     "{{user}}",
			"greeting": "hello {{user}}",
			"missing":  "{{nope}}",
			"static":   42,
		}, nil, []domain.Action{}),
	)
	svc := &stubCaller{ok: map[string]bool{"lookup": true}}
	eng := runtime.NewEngine(j, nil, runtime.WithServiceCaller(svc))
	run, _ := eng.StartRun(context.Background(), map[string]any{"user": "ada"})

	eng.Dispatch(context.Background(), run, "go_b", "", nil)

	require.Len(t, svc.params, 1)
	got := svc.params[0]
	assert.Equal(t, "ada", got["user"])
	assert.Equal(t, "hello ada", got["greeting"])
	assert.Nil(t, got["missing"])
	assert.Equal(t, 42, got["static"])
}

func TestExecutor_StateWritesAreReported(t *testing.T) {
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"answer.name": "ada"}),
		domain.StateUpdate(domain.ScopeScreen, map[string]any{"draft": "x"}),
	)
	eng := runtime.NewEngine(j, nil)
	run, _ := eng.StartRun(context.Background(), nil)

	res := eng.Dispatch(context.Background(), run, "go_b", "", nil)

	require.Len(t, res.Writes, 2)
	assert.Equal(t, "answer.name", res.Writes[0].Key)
	assert.Equal(t, domain.ScopeModule, res.Writes[0].Scope)
	assert.Equal(t, domain.ScopeScreen, res.Writes[1].Scope)
}

func TestExecutor_ArrayValuesReplaceWholesale(t *testing.T) {
	j := withEventActions(
		domain.StateUpdate(domain.ScopeModule, map[string]any{"picks": []any{"a", "b"}}),
	)
	eng := runtime.NewEngine(j, nil)
	run, _ := eng.StartRun(context.Background(), map[string]any{"picks": []any{"z"}})

	eng.Dispatch(context.Background(), run, "go_b", "", nil)

	assert.Equal(t, []any{"a", "b"}, run.Module["picks"])
}
