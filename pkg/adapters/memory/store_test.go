package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayfarerhq/wayfarer/pkg/adapters/memory"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	state := domain.NewRunState("r1", "j1", "a1", "s1",
		map[string]any{"user": "ada"}, nil)

	require.NoError(t, store.Save(ctx, "r1", state))

	loaded, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "s1", loaded.ScreenID)
	assert.Equal(t, "ada", loaded.Module["user"])

	t.Run("load returns a detached copy", func(t *testing.T) {
		loaded.Module["user"] = "mallory"
		again, err := store.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "ada", again.Module["user"])
	})

	t.Run("save detaches from caller", func(t *testing.T) {
		state.Module["user"] = "eve"
		again, err := store.Load(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "ada", again.Module["user"])
	})

	t.Run("list and delete", func(t *testing.T) {
		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"r1"}, ids)

		require.NoError(t, store.Delete(ctx, "r1"))
		_, err = store.Load(ctx, "r1")
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	loader := memory.NewLoader()
	loader.AddJourney(&domain.Journey{ID: "j1", Name: "Onboarding"})
	loader.SetGlobalScreens([]domain.Screen{{ID: "error_screen"}})

	j, err := loader.LoadJourney(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", j.Name)

	_, err = loader.LoadJourney(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrJourneyNotFound)

	screens, err := loader.LoadGlobalScreens(ctx)
	require.NoError(t, err)
	require.Len(t, screens, 1)
	assert.Equal(t, "error_screen", screens[0].ID)
}
