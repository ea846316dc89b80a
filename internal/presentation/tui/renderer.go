// Package tui renders effective screens for terminal sessions: markdown text
// through glamour, everything else with light termenv styling.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// ScreenRenderer turns an EffectiveScreen into styled terminal output.
type ScreenRenderer struct {
	profile  termenv.Profile
	markdown func(string) (string, error)
}

// NewScreenRenderer creates a renderer. Glamour auto-detects the terminal
// background for its markdown theme.
func NewScreenRenderer() *ScreenRenderer {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	md := func(s string) (string, error) { return s + "\n", nil }
	if r != nil {
		md = r.Render
	}
	return &ScreenRenderer{profile: termenv.ColorProfile(), markdown: md}
}

// Render returns the screen as a styled block, ready to write to a terminal.
func (r *ScreenRenderer) Render(screen *domain.EffectiveScreen) string {
	var sb strings.Builder

	title := screen.ID
	if screen.Title != "" {
		title = screen.Title
	}
	sb.WriteString("\n")
	sb.WriteString(termenv.String(title).Bold().Foreground(r.profile.Color("#a78bfa")).String())
	sb.WriteString(termenv.String("  (" + screen.ID + ")").Faint().String())
	sb.WriteString("\n")

	for _, sec := range screen.Sections {
		if sec.Title != "" {
			sb.WriteString(termenv.String(sec.Title).Underline().String())
			sb.WriteString("\n")
		}
		for _, el := range sec.Elements {
			sb.WriteString(r.renderElement(el))
		}
	}
	return sb.String()
}

func (r *ScreenRenderer) renderElement(el domain.EffectiveElement) string {
	if visible, ok := el.State["visible"].(bool); ok && !visible {
		return ""
	}

	switch el.Type {
	case domain.ElementText:
		if text, ok := el.State["text"].(string); ok {
			if out, err := r.markdown(text); err == nil {
				return out
			}
			return text + "\n"
		}
		return ""

	case domain.ElementButton:
		label := stateString(el.State, "label", el.ID)
		btn := termenv.String(" " + label + " ").
			Foreground(r.profile.Color("0")).
			Background(r.profile.Color("#e879f9")).
			String()
		return fmt.Sprintf("  %s  %s\n", btn, termenv.String(el.ID).Faint().String())

	case domain.ElementInput:
		value := stateString(el.State, "value", "")
		placeholder := stateString(el.State, "placeholder", el.ID)
		if value == "" {
			return fmt.Sprintf("  [ %s ]\n", termenv.String(placeholder).Faint().String())
		}
		return fmt.Sprintf("  [ %s ]\n", value)

	case domain.ElementToggle:
		mark := "[ ]"
		if on, ok := el.State["value"].(bool); ok && on {
			mark = "[x]"
		}
		return fmt.Sprintf("  %s %s\n", mark, stateString(el.State, "label", el.ID))

	case domain.ElementSingleSelect, domain.ElementMultiSelect:
		var sb strings.Builder
		selected := stateString(el.State, "value", "")
		if options, ok := el.State["options"].([]any); ok {
			for _, opt := range options {
				label := fmt.Sprintf("%v", opt)
				if label == selected {
					sb.WriteString(termenv.String("  > " + label + "\n").Bold().String())
				} else {
					sb.WriteString("    " + label + "\n")
				}
			}
		}
		return sb.String()

	case domain.ElementSpacer:
		return "\n"

	default:
		return fmt.Sprintf("  %s\n", termenv.String("("+el.Type+" "+el.ID+")").Faint().String())
	}
}

func stateString(state map[string]any, key, fallback string) string {
	if v, ok := state[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
