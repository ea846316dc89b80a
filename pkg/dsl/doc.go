/*
Package dsl provides a fluent Go builder for programmatically constructing
wayfarer journeys.

It lets developers define agents, screens, elements and events using a
type-safe builder pattern instead of external YAML or JSON files. This is
particularly useful for dynamic journey generation, unit testing, and
leveraging IDE autocompletion/type-checking.

Example usage:

	package main

	import (
		"github.com/wayfarerhq/wayfarer/pkg/domain"
		"github.com/wayfarerhq/wayfarer/pkg/dsl"
	)

	func main() {
		b := dsl.New("onboarding").Name("Onboarding").Start("greeter")

		agent := b.Agent("greeter").Voice("warm")

		welcome := agent.Screen("welcome").Title("Welcome")
		welcome.On("continue").
			Trigger(domain.TriggerSelection).
			Do(domain.Navigate("details"))

		details := agent.Screen("details").Title("Your details")
		details.Section("body").
			Element("name_input", domain.ElementInput).
			State("value", "")
		details.On("submit").
			Do(domain.Close(true, map[string]any{"outcome": "done"}))

		journey, err := b.Build()
		if err != nil {
			// unresolved references, duplicate ids, ...
		}
		// ... pass journey to wayfarer.New(journey)
		_ = journey
	}
*/
package dsl
