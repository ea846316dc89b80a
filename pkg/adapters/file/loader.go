// Package file loads journey and screen definitions from YAML/JSON files
// on disk. Layout: <dir>/journeys/<id>.yaml plus optional shared screens
// under <dir>/screens/.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wayfarerhq/wayfarer/internal/compiler"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Loader implements ports.JourneyLoader over a directory tree.
type Loader struct {
	root string
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{root: dir}
}

// LoadJourney reads and decodes <root>/journeys/<id>.(yaml|yml|json).
func (l *Loader) LoadJourney(ctx context.Context, id string) (*domain.Journey, error) {
	for _, ext := range []string{".yaml", ".yml", ".json"} {
		path := filepath.Join(l.root, "journeys", id+ext)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read journey %s: %w", id, err)
		}
		j, err := compiler.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("journey %s: %w", id, err)
		}
		return j, nil
	}
	return nil, domain.ErrJourneyNotFound
}

// LoadJourneyFile decodes a single journey document at an explicit path.
func (l *Loader) LoadJourneyFile(path string) (*domain.Journey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return compiler.Decode(data)
}

// LoadGlobalScreens reads every screen document under <root>/screens.
// A missing directory means no global screens, not an error.
func (l *Loader) LoadGlobalScreens(ctx context.Context) ([]domain.Screen, error) {
	dir := filepath.Join(l.root, "screens")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read screens dir: %w", err)
	}

	var screens []domain.Screen
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read screen %s: %w", entry.Name(), err)
		}
		screen, err := compiler.DecodeScreen(data)
		if err != nil {
			return nil, fmt.Errorf("screen %s: %w", entry.Name(), err)
		}
		screens = append(screens, *screen)
	}
	return screens, nil
}
