package ports

import (
	"context"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// JourneyLoader retrieves journey and screen definitions from the
// persistence layer. The interpreter treats these as immutable reads at run
// start; it never writes definitions during a run.
type JourneyLoader interface {
	// LoadJourney returns the journey with the given id, or
	// domain.ErrJourneyNotFound.
	LoadJourney(ctx context.Context, id string) (*domain.Journey, error)

	// LoadGlobalScreens returns screens shared across journeys (e.g. a
	// common error or completion screen), addressable as navigate targets.
	LoadGlobalScreens(ctx context.Context) ([]domain.Screen, error)
}
