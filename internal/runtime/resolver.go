package runtime

import (
	"github.com/wayfarerhq/wayfarer/internal/rules"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// ResolveEffective computes the render-ready view of a screen for the given
// merged state. For each element, conditions are evaluated in declaration
// order and every true condition's patch is overlaid onto the element's
// declared state, so on conflicting keys the LAST true condition wins.
// Elements with no matching condition keep their declared state unchanged.
//
// Resolution is pure: it never mutates the screen definition or run state
// and may be called repeatedly (e.g. after every state change).
func ResolveEffective(screen *domain.Screen, merged map[string]any) *domain.EffectiveScreen {
	if screen == nil {
		return nil
	}

	out := &domain.EffectiveScreen{
		ID:       screen.ID,
		Title:    screen.Title,
		HideBack: screen.HideBack,
	}

	for i := range screen.Sections {
		sec := &screen.Sections[i]
		eff := domain.EffectiveSection{
			ID:         sec.ID,
			Title:      sec.Title,
			Position:   sec.Position,
			Direction:  sec.Direction,
			Scrollable: sec.Scrollable,
		}
		for j := range sec.Elements {
			eff.Elements = append(eff.Elements, resolveElement(&sec.Elements[j], merged))
		}
		out.Sections = append(out.Sections, eff)
	}

	return out
}

func resolveElement(el *domain.Element, merged map[string]any) domain.EffectiveElement {
	state := make(map[string]any, len(el.State))
	for k, v := range el.State {
		state[k] = v
	}

	for i := range el.Conditions {
		cond := &el.Conditions[i]
		if !rules.Evaluate(cond.When, merged) {
			continue
		}
		for k, v := range cond.Patch {
			state[k] = v
		}
	}

	return domain.EffectiveElement{
		ID:    el.ID,
		Type:  el.Type,
		State: state,
		Style: el.Style,
	}
}
