package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/bine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bine version %s\n", strings.TrimSpace(bine.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
