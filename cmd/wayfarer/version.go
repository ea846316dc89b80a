package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	wayfarer "github.com/wayfarerhq/wayfarer"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of wayfarer",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wayfarer version %s\n", strings.TrimSpace(wayfarer.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
