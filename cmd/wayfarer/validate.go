package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfarerhq/wayfarer/internal/compiler"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a journey definition for consistency",
	Long: `Decodes the journey and reports structural findings: duplicate IDs,
dangling navigate targets, unknown handoff agents, and malformed actions.
Errors exit non-zero; warnings are informational.`,
	Run: func(cmd *cobra.Command, args []string) {
		journey, globals, err := loadJourney(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		issues := compiler.Validate(journey, globals)
		if len(issues) == 0 {
			fmt.Printf("Journey %q is valid.\n", journey.ID)
			return
		}

		failed := false
		for _, issue := range issues {
			fmt.Println(issue)
			if issue.Severity == compiler.SeverityError {
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
