package dsl

import "github.com/wayfarerhq/wayfarer/pkg/domain"

// ScreenBuilder provides a fluent API for configuring a screen.
type ScreenBuilder struct {
	screen   domain.Screen
	sections []*SectionBuilder
	events   []*EventBuilder
	agent    *AgentBuilder
}

// Title sets the screen title.
func (s *ScreenBuilder) Title(title string) *ScreenBuilder {
	s.screen.Title = title
	return s
}

// HideBack hides the renderer's back affordance on this screen.
func (s *ScreenBuilder) HideBack() *ScreenBuilder {
	s.screen.HideBack = true
	return s
}

// State seeds a screen-scoped key. The seed is reapplied every time the
// screen becomes current.
func (s *ScreenBuilder) State(key string, value any) *ScreenBuilder {
	if s.screen.State == nil {
		s.screen.State = make(map[string]any)
	}
	s.screen.State[key] = value
	return s
}

// Section creates a new section on the screen.
// If the section already exists, it returns the existing builder.
func (s *ScreenBuilder) Section(id string) *SectionBuilder {
	for _, sec := range s.sections {
		if sec.section.ID == id {
			return sec
		}
	}
	sec := &SectionBuilder{section: domain.Section{ID: id}, screen: s}
	s.sections = append(s.sections, sec)
	return sec
}

// On creates a screen-level event, matched when a dispatch carries no
// source element id. If the event already exists, it returns the existing
// builder.
func (s *ScreenBuilder) On(eventID string) *EventBuilder {
	for _, eb := range s.events {
		if eb.event.ID == eventID {
			return eb
		}
	}
	eb := &EventBuilder{event: domain.Event{ID: eventID}}
	s.events = append(s.events, eb)
	return eb
}

// Agent returns the parent builder, for chaining across screens.
func (s *ScreenBuilder) Agent() *AgentBuilder {
	return s.agent
}

func (s *ScreenBuilder) build() domain.Screen {
	screen := s.screen
	screen.Sections = make([]domain.Section, 0, len(s.sections))
	for _, sec := range s.sections {
		screen.Sections = append(screen.Sections, sec.build())
	}
	screen.Events = make([]domain.Event, 0, len(s.events))
	for _, eb := range s.events {
		screen.Events = append(screen.Events, eb.event)
	}
	return screen
}

// SectionBuilder provides a fluent API for configuring a section.
type SectionBuilder struct {
	section  domain.Section
	elements []*ElementBuilder
	screen   *ScreenBuilder
}

// Title sets the section title.
func (s *SectionBuilder) Title(title string) *SectionBuilder {
	s.section.Title = title
	return s
}

// Position anchors the section (top, body, bottom).
func (s *SectionBuilder) Position(position string) *SectionBuilder {
	s.section.Position = position
	return s
}

// Direction sets the section layout direction.
func (s *SectionBuilder) Direction(direction string) *SectionBuilder {
	s.section.Direction = direction
	return s
}

// Scrollable marks the section scrollable.
func (s *SectionBuilder) Scrollable() *SectionBuilder {
	s.section.Scrollable = true
	return s
}

// Element creates a new element of the given type in the section.
// If the element already exists, it returns the existing builder.
func (s *SectionBuilder) Element(id, elementType string) *ElementBuilder {
	for _, el := range s.elements {
		if el.element.ID == id {
			return el
		}
	}
	el := &ElementBuilder{element: domain.Element{ID: id, Type: elementType}, section: s}
	s.elements = append(s.elements, el)
	return el
}

// Screen returns the parent builder, for chaining across sections.
func (s *SectionBuilder) Screen() *ScreenBuilder {
	return s.screen
}

func (s *SectionBuilder) build() domain.Section {
	section := s.section
	section.Elements = make([]domain.Element, 0, len(s.elements))
	for _, el := range s.elements {
		section.Elements = append(section.Elements, el.build())
	}
	return section
}

// ElementBuilder provides a fluent API for configuring an element.
type ElementBuilder struct {
	element domain.Element
	events  []*EventBuilder
	section *SectionBuilder
}

// State sets a base state key on the element.
func (e *ElementBuilder) State(key string, value any) *ElementBuilder {
	if e.element.State == nil {
		e.element.State = make(map[string]any)
	}
	e.element.State[key] = value
	return e
}

// Style sets an opaque style key passed through to the renderer.
func (e *ElementBuilder) Style(key string, value any) *ElementBuilder {
	if e.element.Style == nil {
		e.element.Style = make(map[string]any)
	}
	e.element.Style[key] = value
	return e
}

// When adds an overlay condition: while rule evaluates true against the
// merged state, patch is applied to the element's effective state. When
// several rules hold, the last declared wins key conflicts.
func (e *ElementBuilder) When(rule *domain.Rule, patch map[string]any) *ElementBuilder {
	e.element.Conditions = append(e.element.Conditions, domain.Condition{When: rule, Patch: patch})
	return e
}

// On creates an event raised by this element. If the event already exists,
// it returns the existing builder.
func (e *ElementBuilder) On(eventID string) *EventBuilder {
	for _, eb := range e.events {
		if eb.event.ID == eventID {
			return eb
		}
	}
	eb := &EventBuilder{event: domain.Event{ID: eventID}}
	e.events = append(e.events, eb)
	return eb
}

// Section returns the parent builder, for chaining across elements.
func (e *ElementBuilder) Section() *SectionBuilder {
	return e.section
}

func (e *ElementBuilder) build() domain.Element {
	element := e.element
	for _, eb := range e.events {
		element.Events = append(element.Events, eb.event)
	}
	return element
}

// EventBuilder provides a fluent API for configuring an event.
type EventBuilder struct {
	event domain.Event
}

// Trigger tags what raises the event (selection, toggle, value_change, ...).
func (e *EventBuilder) Trigger(trigger string) *EventBuilder {
	e.event.Trigger = trigger
	return e
}

// After marks the event delay-triggered, firing ms milliseconds after the
// owning screen becomes current.
func (e *EventBuilder) After(ms int) *EventBuilder {
	e.event.Trigger = domain.TriggerDelay
	e.event.DelayMS = ms
	return e
}

// When adds a gate condition. All gates must pass for the event to fire.
func (e *EventBuilder) When(rule *domain.Rule) *EventBuilder {
	e.event.Conditions = append(e.event.Conditions, domain.Condition{When: rule})
	return e
}

// Do appends actions to the event's action list.
func (e *EventBuilder) Do(actions ...domain.Action) *EventBuilder {
	e.event.Actions = append(e.event.Actions, actions...)
	return e
}
