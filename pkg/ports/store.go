package ports

import (
	"context"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// RunStore persists run state between dispatches. This enables stateless
// deployments: load, dispatch, save, under a per-run lock.
type RunStore interface {
	// Save persists the state for a given run ID.
	Save(ctx context.Context, runID string, state *domain.RunState) error

	// Load retrieves the state for a given run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunState, error)

	// Delete removes the state for a given run ID.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of active runs.
	List(ctx context.Context) ([]string, error)
}
