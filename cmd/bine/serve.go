package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/bine/internal/cli"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve <script.yaml>",
	Short: "Replay a script while serving the collection over HTTP",
	Long: `Serve runs the script one operation per interval and exposes the collection:
GET /elements for the current snapshot, GET /events for an SSE change feed,
and GET /metrics for Prometheus metrics.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		addr, _ := cmd.Flags().GetString("addr")
		interval, _ := cmd.Flags().GetDuration("interval")

		err := cli.Serve(cli.ServeOptions{
			ScriptPath: args[0],
			Addr:       addr,
			Interval:   interval,
			Debug:      debug,
		})
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Duration("interval", 1*time.Second, "Delay between script operations")
	rootCmd.AddCommand(serveCmd)
}
