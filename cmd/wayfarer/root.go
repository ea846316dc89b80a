package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/internal/logging"
	"github.com/wayfarerhq/wayfarer/pkg/adapters/file"
	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

var rootCmd = &cobra.Command{
	Use:   "wayfarer",
	Short: "Wayfarer is a screen/event/state interpreter for agent-guided flows",
	Long: `Wayfarer executes declarative journeys: agents, screens, and events
defined in YAML, driven by a voice agent and a rendering client. The CLI
runs journeys interactively, validates definitions, and serves the HTTP,
websocket, and MCP surfaces.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("dir", ".", "Directory containing journeys/ and screens/")
	rootCmd.PersistentFlags().String("journey", "", "Journey ID to load (or a direct path to a journey file)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}

// loadJourney resolves the journey and global screens from the --dir tree.
// --journey accepts either an ID under <dir>/journeys or a file path.
func loadJourney(cmd *cobra.Command) (*domain.Journey, []domain.Screen, error) {
	dir, _ := cmd.Flags().GetString("dir")
	ref, _ := cmd.Flags().GetString("journey")
	if ref == "" {
		return nil, nil, fmt.Errorf("--journey is required")
	}

	loader := file.NewLoader(dir)

	var journey *domain.Journey
	if _, err := os.Stat(ref); err == nil {
		journey, err = loader.LoadJourneyFile(ref)
		if err != nil {
			return nil, nil, err
		}
	} else {
		var err error
		journey, err = loader.LoadJourney(cmd.Context(), ref)
		if err != nil {
			return nil, nil, err
		}
	}

	globals, err := loader.LoadGlobalScreens(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return journey, globals, nil
}

func newInterpreter(cmd *cobra.Command, opts ...wayfarer.Option) (*wayfarer.Interpreter, error) {
	journey, globals, err := loadJourney(cmd)
	if err != nil {
		return nil, err
	}

	level, _ := cmd.Flags().GetString("log-level")
	opts = append(opts,
		wayfarer.WithGlobalScreens(globals),
		wayfarer.WithLogger(logging.New(logging.ParseLevel(level))),
	)
	return wayfarer.New(journey, opts...)
}
