// Package compiler turns raw journey documents (YAML or JSON) into typed
// definitions and checks their internal references. Element and action
// payloads are loosely typed in authored documents; decoding preserves
// unknown tags so the runtime can skip them instead of rejecting the
// journey (fail-open for forward compatibility).
package compiler

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Decode parses a journey document. YAML is a superset of JSON, so both
// formats go through the same path: yaml into a generic map, then
// mapstructure into the typed tree.
func Decode(data []byte) (*domain.Journey, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse journey document: %w", err)
	}
	return DecodeMap(raw)
}

// DecodeMap builds a journey from an already-parsed generic map.
func DecodeMap(raw map[string]any) (*domain.Journey, error) {
	var journey domain.Journey
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &journey,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc("2006-01-02T15:04:05Z07:00"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode journey: %w", err)
	}
	if journey.ID == "" {
		return nil, fmt.Errorf("journey missing id")
	}
	return &journey, nil
}

// DecodeScreen parses a standalone (global) screen document.
func DecodeScreen(data []byte) (*domain.Screen, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse screen document: %w", err)
	}
	var screen domain.Screen
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &screen,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode screen: %w", err)
	}
	if screen.ID == "" {
		return nil, fmt.Errorf("screen missing id")
	}
	return &screen, nil
}

// Severity of a validation issue. Errors make a journey unrunnable;
// warnings degrade to the runtime's documented no-op behavior.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue is one validation finding.
type Issue struct {
	Severity string `json:"severity"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s: %s", i.Severity, i.Path, i.Message)
}

// Validate checks a journey's internal references against itself and the
// provided global screens. It returns all findings rather than stopping at
// the first.
func Validate(j *domain.Journey, globals []domain.Screen) []Issue {
	var issues []Issue
	report := func(severity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: severity, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	agentIDs := make(map[string]bool)
	screenIDs := make(map[string]bool)
	for i := range globals {
		screenIDs[globals[i].ID] = true
	}

	for i := range j.Agents {
		agent := &j.Agents[i]
		path := "agents." + agent.ID
		if agent.ID == "" {
			report(SeverityError, fmt.Sprintf("agents[%d]", i), "agent missing id")
			continue
		}
		if agentIDs[agent.ID] {
			report(SeverityError, path, "duplicate agent id %q", agent.ID)
		}
		agentIDs[agent.ID] = true

		if len(agent.Screens) == 0 {
			report(SeverityError, path, "agent has no screens")
		}
		for s := range agent.Screens {
			sc := &agent.Screens[s]
			if sc.ID == "" {
				report(SeverityError, fmt.Sprintf("%s.screens[%d]", path, s), "screen missing id")
				continue
			}
			if screenIDs[sc.ID] {
				report(SeverityError, path+".screens."+sc.ID, "duplicate screen id %q", sc.ID)
			}
			screenIDs[sc.ID] = true
		}
	}

	if j.StartAgent == "" {
		report(SeverityError, "start_agent", "journey missing start_agent")
	} else if !agentIDs[j.StartAgent] {
		report(SeverityError, "start_agent", "start agent %q not found", j.StartAgent)
	}

	for i := range j.Agents {
		agent := &j.Agents[i]
		path := "agents." + agent.ID

		for _, target := range agent.Handoffs {
			if !agentIDs[target] {
				report(SeverityError, path+".handoffs", "handoff target %q not found in journey", target)
			}
		}
		for screenID := range agent.ScreenPrompts {
			if !screenIDs[screenID] {
				report(SeverityWarning, path+".screen_prompts", "prompt fragment for unknown screen %q", screenID)
			}
		}

		for s := range agent.Screens {
			validateScreen(&agent.Screens[s], path+".screens."+agent.Screens[s].ID, screenIDs, report)
		}
	}
	for i := range globals {
		validateScreen(&globals[i], "globals."+globals[i].ID, screenIDs, report)
	}

	return issues
}

func validateScreen(sc *domain.Screen, path string, screenIDs map[string]bool, report func(string, string, string, ...any)) {
	eventIDs := make(map[string]bool)
	for e := range sc.Events {
		ev := &sc.Events[e]
		if eventIDs[ev.ID] {
			report(SeverityWarning, path+".events", "duplicate event id %q; only the first fires", ev.ID)
		}
		eventIDs[ev.ID] = true
		validateActions(ev.Actions, path+".events."+ev.ID, screenIDs, report)
	}

	elementIDs := make(map[string]bool)
	for s := range sc.Sections {
		sec := &sc.Sections[s]
		for l := range sec.Elements {
			el := &sec.Elements[l]
			if el.ID == "" {
				report(SeverityWarning, path, "element without id cannot raise events")
				continue
			}
			if elementIDs[el.ID] {
				report(SeverityWarning, path, "duplicate element id %q", el.ID)
			}
			elementIDs[el.ID] = true
			for e := range el.Events {
				validateActions(el.Events[e].Actions, path+"."+el.ID+".events."+el.Events[e].ID, screenIDs, report)
			}
		}
	}
}

func validateActions(actions []domain.Action, path string, screenIDs map[string]bool, report func(string, string, string, ...any)) {
	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case domain.ActionNavigate:
			if !screenIDs[a.Target] {
				// The runtime treats this as a warning no-op, so authoring
				// surfaces it as a warning too.
				report(SeverityWarning, path, "navigate target %q not found", a.Target)
			}
		case domain.ActionServiceCall:
			if a.Service == "" {
				report(SeverityError, path, "service call without a service name")
			}
			validateActions(a.OnSuccess, path+".on_success", screenIDs, report)
			validateActions(a.OnError, path+".on_error", screenIDs, report)
		case domain.ActionStateUpdate, domain.ActionClose:
			// Nothing to cross-check.
		default:
			report(SeverityWarning, path, "unknown action type %q is skipped at runtime", a.Type)
		}
	}
}
