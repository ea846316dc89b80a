package graph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/dsl"
)

func buildJourney(t *testing.T) *domain.Journey {
	t.Helper()
	b := dsl.New("onboarding").Start("greeter")

	greeter := b.Agent("greeter").Handoff("closer")
	welcome := greeter.Screen("welcome").Title("Welcome")
	welcome.On("continue").Do(domain.Navigate("details"))
	details := greeter.Screen("details")
	details.On("submit").Do(domain.ServiceCall("verify", nil,
		[]domain.Action{domain.Navigate("welcome")},
		[]domain.Action{domain.Navigate("details")},
	))

	b.Agent("closer").Screen("wrap").On("finish").Do(domain.Close(true, nil))

	j, err := b.Build()
	require.NoError(t, err)
	return j
}

func TestMermaid_Topology(t *testing.T) {
	out := Mermaid(buildJourney(t), nil, nil)

	assert.Contains(t, out, "flowchart TD")
	assert.Contains(t, out, `subgraph greeter["Agent: greeter"]`)
	assert.Contains(t, out, `welcome["Welcome"]`)
	assert.Contains(t, out, "welcome -->|continue| details")
	assert.Contains(t, out, "details -->|submit (on_success)| welcome")
	assert.Contains(t, out, "details -->|submit (on_error)| details")
	assert.Contains(t, out, "greeter -. handoff .-> closer")
	assert.Contains(t, out, "wrap -->|finish| __end__")
	assert.Contains(t, out, "__end__((end))")
	assert.Contains(t, out, "__start__((start)) --> welcome")
}

func TestMermaid_Overlay(t *testing.T) {
	out := Mermaid(buildJourney(t), nil, &Overlay{
		VisitedScreens: []string{"welcome", "welcome"},
		CurrentScreen:  "details",
	})

	assert.Contains(t, out, "class welcome visited;")
	assert.Contains(t, out, "class details current;")
	// Visited list is deduplicated.
	assert.Equal(t, 1, strings.Count(out, "class welcome visited;"))
}

func TestMermaid_GlobalScreens(t *testing.T) {
	b := dsl.New("j")
	agent := b.Agent("a")
	agent.Screen("home").On("help").Do(domain.Navigate("help_overlay"))
	j, err := b.Build()
	require.NoError(t, err)

	globals := []domain.Screen{{ID: "help_overlay", Title: "Help"}}
	out := Mermaid(j, globals, nil)
	assert.Contains(t, out, `help_overlay["Help"]`)
	assert.Contains(t, out, "home -->|help| help_overlay")
}
