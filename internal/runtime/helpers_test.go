package runtime_test

import (
	"context"
	"errors"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
)

// testJourney builds a small two-screen journey used across the runtime
// tests: screen A with a global navigation event and a button element,
// screen B with an initial counter, plus a terminal close event.
func testJourney() *domain.Journey {
	return &domain.Journey{
		ID:         "j1",
		Name:       "Onboarding",
		StartAgent: "greeter",
		Agents: []domain.Agent{
			{
				ID: "greeter",
				Screens: []domain.Screen{
					{
						ID:    "A",
						State: map[string]any{"step": "intro"},
						Sections: []domain.Section{
							{
								ID:       "body",
								Position: domain.PositionBody,
								Elements: []domain.Element{
									{
										ID:    "next_btn",
										Type:  domain.ElementButton,
										State: map[string]any{"label": "Next"},
										Events: []domain.Event{
											{
												ID:      "btn_tap",
												Trigger: domain.TriggerSelection,
												Actions: []domain.Action{domain.Navigate("B")},
											},
										},
									},
								},
							},
						},
						Events: []domain.Event{
							{
								ID:      "go_b",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{domain.Navigate("B")},
							},
						},
					},
					{
						ID:    "B",
						State: map[string]any{"count": 0},
						Events: []domain.Event{
							{
								ID:      "finish",
								Trigger: domain.TriggerCustom,
								Actions: []domain.Action{
									domain.Close(true, map[string]any{"reason": "done"}),
								},
							},
						},
					},
				},
			},
		},
	}
}

// stubCaller is a ServiceCaller with scripted outcomes per service name.
type stubCaller struct {
	ok     map[string]bool
	calls  []string
	params []map[string]any
}

func (s *stubCaller) Call(ctx context.Context, name string, params map[string]any) (ports.ServiceResult, error) {
	s.calls = append(s.calls, name)
	s.params = append(s.params, params)
	ok, known := s.ok[name]
	if !known {
		return ports.ServiceResult{}, errors.New("unknown service: " + name)
	}
	return ports.ServiceResult{OK: ok}, nil
}
