package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wayfarer "github.com/wayfarerhq/wayfarer"
	"github.com/wayfarerhq/wayfarer/internal/presentation/tui"
	"github.com/wayfarerhq/wayfarer/pkg/ports"
	"github.com/wayfarerhq/wayfarer/pkg/registry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a journey interactively in the terminal",
	Long: `Starts a run on the given journey and drives it from stdin. Commands:
event <id>, tool <name> k=v, handoff <agent>, state, exit. A bare line
fires the event with that id.

Service calls resolve against a local registry that echoes params back,
so journeys with service_call actions stay walkable offline.`,
	Run: func(cmd *cobra.Command, args []string) {
		services := registry.New()
		services.RegisterOK("echo", func(_ context.Context, params map[string]any) (any, error) {
			return params, nil
		})
		services.Fallback(ports.ServiceCallerFunc(func(_ context.Context, name string, params map[string]any) (ports.ServiceResult, error) {
			fmt.Printf("  (service %q called, returning ok)\n", name)
			return ports.ServiceResult{OK: true, Payload: params}, nil
		}))

		itp, err := newInterpreter(cmd, wayfarer.WithServiceCaller(services))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer itp.Shutdown()

		runner := wayfarer.NewRunner()
		runner.Input = os.Stdin
		runner.Output = os.Stdout

		if rich, _ := cmd.Flags().GetBool("rich"); rich {
			tui.PrintBanner(os.Stdout)
			runner.Render = tui.NewScreenRenderer().Render
		}

		if err := runner.Run(cmd.Context(), itp); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("rich", false, "Render screens with colors and markdown")
}
