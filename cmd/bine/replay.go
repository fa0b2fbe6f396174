package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/bine/internal/cli"
)

// replayCmd represents the replay command
var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a mutation script and print the event trace",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		redisAddr, _ := cmd.Flags().GetString("redis")
		noColor, _ := cmd.Flags().GetBool("no-color")

		err := cli.Replay(cli.ReplayOptions{
			ScriptPath: args[0],
			RedisAddr:  redisAddr,
			Debug:      debug,
			NoColor:    noColor,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	replayCmd.Flags().String("redis", "", "Mirror the collection to this Redis address")
	replayCmd.Flags().Bool("no-color", false, "Disable colored output")
	rootCmd.AddCommand(replayCmd)
}
