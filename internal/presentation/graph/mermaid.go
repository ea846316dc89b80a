// Package graph renders journey topology as Mermaid flowchart syntax, for
// documentation and for eyeballing navigation wiring before a client exists.
package graph

import (
	"fmt"
	"strings"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Overlay contains dynamic run state to visualize on the graph.
type Overlay struct {
	VisitedScreens []string
	CurrentScreen  string
}

// Mermaid produces a Mermaid flowchart from a journey. Agents become
// subgraphs, screens become nodes, and edges are derived from the actions
// reachable on each screen:
//   - navigate: solid edge labeled with the event id
//   - close: edge to a terminal circle
//   - handoff targets: dotted edges between agent subgraphs
//
// Edges inside service-call branches keep the event label with an on_success
// or on_error suffix. An Overlay highlights visited and current screens.
func Mermaid(j *domain.Journey, globals []domain.Screen, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("flowchart TD\n")

	hasClose := false
	var edges []string

	for i := range j.Agents {
		agent := &j.Agents[i]
		safeAgent := sanitizeID(agent.ID)
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"Agent: %s\"]\n", safeAgent, agent.ID))
		for s := range agent.Screens {
			sc := &agent.Screens[s]
			label := sc.ID
			if sc.Title != "" {
				label = sc.Title
			}
			sb.WriteString(fmt.Sprintf("        %s[\"%s\"]\n", sanitizeID(sc.ID), escapeLabel(label)))
		}
		sb.WriteString("    end\n")

		for s := range agent.Screens {
			collectScreenEdges(&agent.Screens[s], &edges, &hasClose)
		}
		for _, target := range agent.Handoffs {
			edges = append(edges, fmt.Sprintf("    %s -. handoff .-> %s", safeAgent, sanitizeID(target)))
		}
	}

	for i := range globals {
		sc := &globals[i]
		label := sc.ID
		if sc.Title != "" {
			label = sc.Title
		}
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", sanitizeID(sc.ID), escapeLabel(label)))
		collectScreenEdges(sc, &edges, &hasClose)
	}

	if hasClose {
		sb.WriteString("    __end__((end))\n")
	}
	for _, e := range edges {
		sb.WriteString(e + "\n")
	}

	if start := j.Agent(j.StartAgent); start != nil && len(start.Screens) > 0 {
		sb.WriteString(fmt.Sprintf("    __start__((start)) --> %s\n", sanitizeID(start.Screens[0].ID)))
	}

	if overlay != nil {
		sb.WriteString("\n    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.VisitedScreens {
			safe := sanitizeID(id)
			if safe != "" && !seen[safe] {
				seen[safe] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safe))
			}
		}
		if overlay.CurrentScreen != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeID(overlay.CurrentScreen)))
		}
	}

	return sb.String()
}

func collectScreenEdges(sc *domain.Screen, edges *[]string, hasClose *bool) {
	for e := range sc.Events {
		ev := &sc.Events[e]
		collectActionEdges(sc.ID, ev.ID, "", ev.Actions, edges, hasClose)
	}
	for s := range sc.Sections {
		for l := range sc.Sections[s].Elements {
			el := &sc.Sections[s].Elements[l]
			for e := range el.Events {
				ev := &el.Events[e]
				collectActionEdges(sc.ID, ev.ID, "", ev.Actions, edges, hasClose)
			}
		}
	}
}

func collectActionEdges(screenID, eventID, suffix string, actions []domain.Action, edges *[]string, hasClose *bool) {
	label := eventID
	if suffix != "" {
		label = eventID + " " + suffix
	}
	for i := range actions {
		a := &actions[i]
		switch a.Type {
		case domain.ActionNavigate:
			*edges = append(*edges, fmt.Sprintf("    %s -->|%s| %s",
				sanitizeID(screenID), escapeLabel(label), sanitizeID(a.Target)))
		case domain.ActionClose:
			*hasClose = true
			*edges = append(*edges, fmt.Sprintf("    %s -->|%s| __end__",
				sanitizeID(screenID), escapeLabel(label)))
		case domain.ActionServiceCall:
			collectActionEdges(screenID, eventID, "(on_success)", a.OnSuccess, edges, hasClose)
			collectActionEdges(screenID, eventID, "(on_error)", a.OnError, edges, hasClose)
		}
	}
}

func sanitizeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}

func escapeLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}
