package domain

import "time"

// Journey is the top-level container for a configured conversational flow.
// Definitions are immutable during a run; updates go through the persistence
// layer and append a version record.
type Journey struct {
	ID           string    `json:"id" yaml:"id" mapstructure:"id"`
	Name         string    `json:"name" yaml:"name" mapstructure:"name"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	OwnerID      string    `json:"owner_id,omitempty" yaml:"owner_id,omitempty" mapstructure:"owner_id"`
	SystemPrompt string    `json:"system_prompt,omitempty" yaml:"system_prompt,omitempty" mapstructure:"system_prompt"`
	Voice        string    `json:"voice,omitempty" yaml:"voice,omitempty" mapstructure:"voice"`
	StartAgent   string    `json:"start_agent" yaml:"start_agent" mapstructure:"start_agent"`
	Agents       []Agent   `json:"agents" yaml:"agents" mapstructure:"agents"`
	Version      string    `json:"version,omitempty" yaml:"version,omitempty" mapstructure:"version"`
	CreatedAt    time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty" mapstructure:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty" mapstructure:"updated_at"`

	// History records past versions, newest last. Maintained by the
	// persistence layer on update; the interpreter only reads it.
	History []VersionRecord `json:"history,omitempty" yaml:"history,omitempty" mapstructure:"history"`
}

// VersionRecord is one entry of a journey's version history.
type VersionRecord struct {
	Version   string    `json:"version" yaml:"version" mapstructure:"version"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty" mapstructure:"note"`
	UpdatedBy string    `json:"updated_by,omitempty" yaml:"updated_by,omitempty" mapstructure:"updated_by"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty" mapstructure:"updated_at"`
}

// Agent is one conversational participant within a journey: its own prompt,
// tools, screens, and handoff edges to other agents.
type Agent struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Voice  string `json:"voice,omitempty" yaml:"voice,omitempty" mapstructure:"voice"`
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`

	// Tools are consumed by the agent runtime, opaque here. By convention a
	// tool invocation maps 1:1 to an event id (see the bridge).
	Tools []Tool `json:"tools,omitempty" yaml:"tools,omitempty" mapstructure:"tools"`

	// Handoffs lists target agent ids within the same journey. An agent with
	// no handoffs is terminal: reaching the close event of its final screen
	// ends the conversation.
	Handoffs []string `json:"handoffs,omitempty" yaml:"handoffs,omitempty" mapstructure:"handoffs"`

	Screens []Screen `json:"screens" yaml:"screens" mapstructure:"screens"`

	// ScreenPrompts maps screen id to an optional per-screen prompt fragment.
	ScreenPrompts map[string]string `json:"screen_prompts,omitempty" yaml:"screen_prompts,omitempty" mapstructure:"screen_prompts"`
}

// Screen returns the agent's screen with the given id, or nil.
func (a *Agent) Screen(id string) *Screen {
	for i := range a.Screens {
		if a.Screens[i].ID == id {
			return &a.Screens[i]
		}
	}
	return nil
}

// Terminal reports whether the agent has no handoff targets.
func (a *Agent) Terminal() bool {
	return len(a.Handoffs) == 0
}

// Tool describes a callable tool exposed to the agent runtime.
// Parameters follow a JSON-schema-like shape; the interpreter never reads it.
type Tool struct {
	Name        string         `json:"name" yaml:"name" mapstructure:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Agent returns the journey's agent with the given id, or nil.
func (j *Journey) Agent(id string) *Agent {
	for i := range j.Agents {
		if j.Agents[i].ID == id {
			return &j.Agents[i]
		}
	}
	return nil
}
