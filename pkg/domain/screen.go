package domain

// SectionPosition constants describe where a section is anchored.
const (
	PositionTop    = "top"
	PositionBody   = "body"
	PositionBottom = "bottom"
)

// ElementType tags for the closed set of renderable units. Unknown tags are
// preserved on decode and skipped at render time rather than rejected.
const (
	ElementText        = "text"
	ElementSpacer      = "spacer"
	ElementImage       = "image"
	ElementButton      = "button"
	ElementInput       = "input"
	ElementSingleSelect = "single_select"
	ElementMultiSelect  = "multi_select"
	ElementToggle      = "toggle"
	ElementChecklist   = "checklist"
	ElementCard        = "card"
	ElementAnimation   = "animation"
)

// Screen is a single presentable unit: sections of elements plus screen-level
// events not tied to any one element.
type Screen struct {
	ID       string `json:"id" yaml:"id" mapstructure:"id"`
	Title    string `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	HideBack bool   `json:"hide_back,omitempty" yaml:"hide_back,omitempty" mapstructure:"hide_back"`

	// State seeds the screen scope whenever this screen becomes current.
	State map[string]any `json:"state,omitempty" yaml:"state,omitempty" mapstructure:"state"`

	Sections []Section `json:"sections,omitempty" yaml:"sections,omitempty" mapstructure:"sections"`

	// Events are the screen's global events, matched when a dispatch carries
	// no source element id.
	Events []Event `json:"events,omitempty" yaml:"events,omitempty" mapstructure:"events"`
}

// Element returns the element with the given id from any section, or nil.
func (s *Screen) Element(id string) *Element {
	for i := range s.Sections {
		for j := range s.Sections[i].Elements {
			if s.Sections[i].Elements[j].ID == id {
				return &s.Sections[i].Elements[j]
			}
		}
	}
	return nil
}

// Event returns the screen-level event with the given id, or nil.
func (s *Screen) Event(id string) *Event {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i]
		}
	}
	return nil
}

// Section is a purely presentational grouping of elements.
type Section struct {
	ID         string    `json:"id" yaml:"id" mapstructure:"id"`
	Title      string    `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Position   string    `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
	Direction  string    `json:"direction,omitempty" yaml:"direction,omitempty" mapstructure:"direction"`
	Scrollable bool      `json:"scrollable,omitempty" yaml:"scrollable,omitempty" mapstructure:"scrollable"`
	Elements   []Element `json:"elements,omitempty" yaml:"elements,omitempty" mapstructure:"elements"`
}

// Element is the atomic UI unit. Its State map holds the only values a user
// interaction can write directly (current text, selected option, toggle
// value). Conditions compute the effective displayed state; Events are the
// interactions it can raise.
type Element struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Type  string `json:"type" yaml:"type" mapstructure:"type"`
	State map[string]any `json:"state,omitempty" yaml:"state,omitempty" mapstructure:"state"`

	// Style is opaque presentation data passed through to the renderer.
	Style map[string]any `json:"style,omitempty" yaml:"style,omitempty" mapstructure:"style"`

	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty" mapstructure:"conditions"`
	Events     []Event     `json:"events,omitempty" yaml:"events,omitempty" mapstructure:"events"`
}

// Event returns the element's event with the given id, or nil.
func (e *Element) Event(id string) *Event {
	for i := range e.Events {
		if e.Events[i].ID == id {
			return &e.Events[i]
		}
	}
	return nil
}

// EffectiveScreen is the render-ready view of a screen after condition
// resolution: element state with matching patches applied.
type EffectiveScreen struct {
	ID       string             `json:"id"`
	Title    string             `json:"title,omitempty"`
	HideBack bool               `json:"hide_back,omitempty"`
	Sections []EffectiveSection `json:"sections,omitempty"`
}

// EffectiveSection mirrors Section with resolved elements.
type EffectiveSection struct {
	ID         string             `json:"id"`
	Title      string             `json:"title,omitempty"`
	Position   string             `json:"position,omitempty"`
	Direction  string             `json:"direction,omitempty"`
	Scrollable bool               `json:"scrollable,omitempty"`
	Elements   []EffectiveElement `json:"elements,omitempty"`
}

// EffectiveElement is an element with its effective (displayed) state.
type EffectiveElement struct {
	ID    string         `json:"id"`
	Type  string         `json:"type"`
	State map[string]any `json:"state,omitempty"`
	Style map[string]any `json:"style,omitempty"`
}
