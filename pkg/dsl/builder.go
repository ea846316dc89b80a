package dsl

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/wayfarer/internal/compiler"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// JourneyBuilder manages journey construction. Agents, screens and events
// keep their insertion order in the built journey.
type JourneyBuilder struct {
	journey domain.Journey
	agents  []*AgentBuilder
	index   map[string]*AgentBuilder
}

// New creates a builder for a journey with the given id.
func New(id string) *JourneyBuilder {
	return &JourneyBuilder{
		journey: domain.Journey{ID: id},
		index:   make(map[string]*AgentBuilder),
	}
}

// Name sets the journey's display name.
func (b *JourneyBuilder) Name(name string) *JourneyBuilder {
	b.journey.Name = name
	return b
}

// Description sets the journey's description.
func (b *JourneyBuilder) Description(desc string) *JourneyBuilder {
	b.journey.Description = desc
	return b
}

// Prompt sets the journey-level system prompt.
func (b *JourneyBuilder) Prompt(prompt string) *JourneyBuilder {
	b.journey.SystemPrompt = prompt
	return b
}

// Voice sets the journey's default voice.
func (b *JourneyBuilder) Voice(voice string) *JourneyBuilder {
	b.journey.Voice = voice
	return b
}

// Start sets the agent that runs first. If never called, Build defaults to
// the first agent added.
func (b *JourneyBuilder) Start(agentID string) *JourneyBuilder {
	b.journey.StartAgent = agentID
	return b
}

// Agent creates a new agent in the journey.
// If the agent already exists, it returns the existing builder.
func (b *JourneyBuilder) Agent(id string) *AgentBuilder {
	if ab, ok := b.index[id]; ok {
		return ab
	}
	ab := &AgentBuilder{agent: domain.Agent{ID: id}, journey: b}
	b.agents = append(b.agents, ab)
	b.index[id] = ab
	return ab
}

// Build assembles and validates the journey. Validation errors are joined
// into a single error; warnings are dropped (use internal/compiler.Validate
// directly to inspect them).
func (b *JourneyBuilder) Build() (*domain.Journey, error) {
	journey := b.journey
	journey.Agents = make([]domain.Agent, 0, len(b.agents))
	for _, ab := range b.agents {
		journey.Agents = append(journey.Agents, ab.build())
	}
	if journey.StartAgent == "" && len(journey.Agents) > 0 {
		journey.StartAgent = journey.Agents[0].ID
	}

	var errs []string
	for _, issue := range compiler.Validate(&journey, nil) {
		if issue.Severity == compiler.SeverityError {
			errs = append(errs, issue.String())
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("journey %q is invalid: %s", journey.ID, strings.Join(errs, "; "))
	}
	return &journey, nil
}

// AgentBuilder provides a fluent API for configuring an agent.
type AgentBuilder struct {
	agent   domain.Agent
	screens []*ScreenBuilder
	journey *JourneyBuilder
}

// Name sets the agent's display name.
func (a *AgentBuilder) Name(name string) *AgentBuilder {
	a.agent.Name = name
	return a
}

// Voice sets the agent's voice.
func (a *AgentBuilder) Voice(voice string) *AgentBuilder {
	a.agent.Voice = voice
	return a
}

// Prompt sets the agent's prompt.
func (a *AgentBuilder) Prompt(prompt string) *AgentBuilder {
	a.agent.Prompt = prompt
	return a
}

// Tool declares a tool available to the agent runtime. By convention the
// tool name doubles as an event id on the agent's screens.
func (a *AgentBuilder) Tool(name, description string, parameters map[string]any) *AgentBuilder {
	a.agent.Tools = append(a.agent.Tools, domain.Tool{
		Name:        name,
		Description: description,
		Parameters:  parameters,
	})
	return a
}

// Handoff adds target agent ids this agent can hand the conversation to.
// An agent with no handoffs is terminal.
func (a *AgentBuilder) Handoff(targets ...string) *AgentBuilder {
	a.agent.Handoffs = append(a.agent.Handoffs, targets...)
	return a
}

// ScreenPrompt sets a per-screen prompt fragment.
func (a *AgentBuilder) ScreenPrompt(screenID, prompt string) *AgentBuilder {
	if a.agent.ScreenPrompts == nil {
		a.agent.ScreenPrompts = make(map[string]string)
	}
	a.agent.ScreenPrompts[screenID] = prompt
	return a
}

// Screen creates a new screen on the agent.
// If the screen already exists, it returns the existing builder.
func (a *AgentBuilder) Screen(id string) *ScreenBuilder {
	for _, sb := range a.screens {
		if sb.screen.ID == id {
			return sb
		}
	}
	sb := &ScreenBuilder{screen: domain.Screen{ID: id}, agent: a}
	a.screens = append(a.screens, sb)
	return sb
}

// Journey returns the parent builder, for chaining across agents.
func (a *AgentBuilder) Journey() *JourneyBuilder {
	return a.journey
}

func (a *AgentBuilder) build() domain.Agent {
	agent := a.agent
	agent.Screens = make([]domain.Screen, 0, len(a.screens))
	for _, sb := range a.screens {
		agent.Screens = append(agent.Screens, sb.build())
	}
	return agent
}
