package runtime

import "github.com/wayfarerhq/wayfarer/pkg/domain"

// Store is the scoped key/value view over a run's state bags. It operates
// directly on the RunState maps; writes are last-write-wins with no
// transaction or rollback. If an action list partially executes, earlier
// writes stay applied.
type Store struct {
	run *domain.RunState
}

// NewStore wraps a run's state bags.
func NewStore(run *domain.RunState) *Store {
	return &Store{run: run}
}

// Get returns the value for key in the given scope.
func (s *Store) Get(scope domain.Scope, key string) (any, bool) {
	m := s.scope(scope)
	v, ok := m[key]
	return v, ok
}

// SetMany writes every key/value into the given scope. New keys are
// created, existing keys overwritten; array values replace wholesale.
func (s *Store) SetMany(scope domain.Scope, values map[string]any) {
	m := s.scope(scope)
	for k, v := range values {
		m[k] = v
	}
}

// Merged returns module scope overlaid by screen scope (screen wins on key
// collision). This is the evaluation context for conditions and templates.
func (s *Store) Merged() map[string]any {
	return s.run.Merged()
}

// ResetScreen replaces the screen scope wholesale with the given seed.
// Called on every navigation; module scope is untouched.
func (s *Store) ResetScreen(seed map[string]any) {
	next := make(map[string]any, len(seed))
	for k, v := range seed {
		next[k] = v
	}
	s.run.Screen = next
}

func (s *Store) scope(scope domain.Scope) map[string]any {
	switch scope {
	case domain.ScopeScreen:
		if s.run.Screen == nil {
			s.run.Screen = make(map[string]any)
		}
		return s.run.Screen
	default:
		// Module is the default scope for writes with a blank or unknown tag.
		if s.run.Module == nil {
			s.run.Module = make(map[string]any)
		}
		return s.run.Module
	}
}
