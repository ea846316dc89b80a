package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/internal/compiler"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

const journeyYAML = `
id: onboarding
name: Onboarding
start_agent: greeter
version: "1.2.0"
agents:
  - id: greeter
    name: Greeter
    voice: calm
    handoffs: [closer]
    tools:
      - name: capture_name
        description: Save the user's name
        parameters:
          type: object
          properties:
            name: {type: string}
    screen_prompts:
      ask_name: "Ask for the user's preferred name."
    screens:
      - id: ask_name
        title: "Welcome"
        state:
          attempts: 0
        sections:
          - id: body
            position: body
            scrollable: true
            elements:
              - id: name_input
                type: input
                state:
                  value: ""
                conditions:
                  - when:
                      op: "!="
                      left: {var: error}
                      right: {value: ""}
                    patch:
                      error_text: "Please try again"
                events:
                  - id: changed
                    trigger: value_change
                    actions:
                      - type: state_update
                        scope: screen
                        values:
                          draft: "{{value}}"
        events:
          - id: capture_name
            trigger: custom
            actions:
              - type: state_update
                scope: module
                values:
                  answer.name: "{{name}}"
              - type: navigate
                target: done
  - id: closer
    screens:
      - id: done
        events:
          - id: finish
            actions:
              - type: close
                completed: true
                reason: {reason: done}
`

func TestDecode_YAML(t *testing.T) {
	j, err := compiler.Decode([]byte(journeyYAML))
	require.NoError(t, err)

	assert.Equal(t, "onboarding", j.ID)
	assert.Equal(t, "greeter", j.StartAgent)
	require.Len(t, j.Agents, 2)

	greeter := j.Agents[0]
	assert.Equal(t, []string{"closer"}, greeter.Handoffs)
	require.Len(t, greeter.Tools, 1)
	assert.Equal(t, "capture_name", greeter.Tools[0].Name)

	screen := greeter.Screens[0]
	assert.Equal(t, "ask_name", screen.ID)
	assert.Equal(t, 0, screen.State["attempts"])

	el := screen.Element("name_input")
	require.NotNil(t, el)
	assert.Equal(t, domain.ElementInput, el.Type)
	require.Len(t, el.Conditions, 1)
	assert.Equal(t, domain.OpNotEquals, el.Conditions[0].When.Op)
	assert.Equal(t, "error", el.Conditions[0].When.Left.Var)

	ev := screen.Event("capture_name")
	require.NotNil(t, ev)
	require.Len(t, ev.Actions, 2)
	assert.Equal(t, domain.ActionStateUpdate, ev.Actions[0].Type)
	assert.Equal(t, domain.ScopeModule, ev.Actions[0].Scope)
	assert.Equal(t, domain.ActionNavigate, ev.Actions[1].Type)
	assert.Equal(t, "done", ev.Actions[1].Target)
}

func TestDecode_JSON(t *testing.T) {
	data := []byte(`{"id":"j2","start_agent":"a","agents":[{"id":"a","screens":[{"id":"s"}]}]}`)
	j, err := compiler.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "j2", j.ID)
}

func TestDecode_UnknownTagsSurvive(t *testing.T) {
	data := []byte(`
id: j3
start_agent: a
agents:
  - id: a
    screens:
      - id: s
        sections:
          - id: body
            elements:
              - id: holo
                type: hologram
        events:
          - id: zap
            actions:
              - type: teleport
                target: mars
`)
	j, err := compiler.Decode(data)
	require.NoError(t, err)

	el := j.Agents[0].Screens[0].Element("holo")
	require.NotNil(t, el)
	assert.Equal(t, "hologram", el.Type)
	assert.Equal(t, "teleport", j.Agents[0].Screens[0].Events[0].Actions[0].Type)
}

func TestDecode_Errors(t *testing.T) {
	_, err := compiler.Decode([]byte("{ not yaml ["))
	assert.Error(t, err)

	_, err = compiler.Decode([]byte("name: missing id"))
	assert.Error(t, err)
}

func TestValidate_CleanJourney(t *testing.T) {
	j, err := compiler.Decode([]byte(journeyYAML))
	require.NoError(t, err)

	issues := compiler.Validate(j, nil)
	assert.Empty(t, issues)
}

func TestValidate_Findings(t *testing.T) {
	j := &domain.Journey{
		ID:         "bad",
		StartAgent: "ghost",
		Agents: []domain.Agent{
			{
				ID:       "a",
				Handoffs: []string{"nobody"},
				Screens: []domain.Screen{
					{
						ID: "s1",
						Events: []domain.Event{
							{ID: "e1", Actions: []domain.Action{domain.Navigate("nowhere")}},
							{ID: "e1"},
							{ID: "e2", Actions: []domain.Action{{Type: "service_call"}}},
							{ID: "e3", Actions: []domain.Action{{Type: "mystery"}}},
						},
					},
				},
			},
			{ID: "a", Screens: []domain.Screen{{ID: "s1"}}},
		},
	}

	issues := compiler.Validate(j, nil)

	var codes []string
	for _, is := range issues {
		codes = append(codes, is.Severity+":"+is.Message)
	}

	wantContains := []string{
		`start agent "ghost" not found`,
		`handoff target "nobody" not found`,
		`duplicate agent id "a"`,
		`duplicate screen id "s1"`,
		`navigate target "nowhere" not found`,
		`duplicate event id "e1"`,
		"service call without a service name",
		`unknown action type "mystery"`,
	}
	for _, want := range wantContains {
		found := false
		for _, c := range codes {
			if strings.Contains(c, want) {
				found = true
				break
			}
		}
		assert.True(t, found, "expected an issue containing %q, got %v", want, codes)
	}
}

func TestValidate_GlobalScreensAreNavigable(t *testing.T) {
	j := &domain.Journey{
		ID:         "g",
		StartAgent: "a",
		Agents: []domain.Agent{
			{ID: "a", Screens: []domain.Screen{
				{ID: "s1", Events: []domain.Event{
					{ID: "bail", Actions: []domain.Action{domain.Navigate("error_screen")}},
				}},
			}},
		},
	}
	globals := []domain.Screen{{ID: "error_screen"}}

	assert.Empty(t, compiler.Validate(j, globals))
	assert.NotEmpty(t, compiler.Validate(j, nil))
}
