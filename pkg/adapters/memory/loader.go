package memory

import (
	"context"
	"sync"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Loader implements ports.JourneyLoader over in-memory definitions.
type Loader struct {
	mu       sync.RWMutex
	journeys map[string]*domain.Journey
	globals  []domain.Screen
}

// NewLoader creates an empty in-memory loader.
func NewLoader() *Loader {
	return &Loader{journeys: make(map[string]*domain.Journey)}
}

// AddJourney registers a journey definition.
func (l *Loader) AddJourney(j *domain.Journey) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.journeys[j.ID] = j
}

// SetGlobalScreens registers the shared screens.
func (l *Loader) SetGlobalScreens(screens []domain.Screen) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.globals = screens
}

// LoadJourney returns the journey with the given id.
func (l *Loader) LoadJourney(ctx context.Context, id string) (*domain.Journey, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	j, ok := l.journeys[id]
	if !ok {
		return nil, domain.ErrJourneyNotFound
	}
	return j, nil
}

// LoadGlobalScreens returns the shared screens.
func (l *Loader) LoadGlobalScreens(ctx context.Context) ([]domain.Screen, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.globals, nil
}
