package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bine",
	Short: "Bine is an observable ordered collection",
	Long: `Bine is a data-binding primitive: an ordered collection that emits a
structured change event and a full snapshot after every mutation. This binary
replays YAML mutation scripts against a live collection for demos and testing.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}
