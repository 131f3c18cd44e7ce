package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmftio/bethe/internal/cli"
)

var serveCmd = &cobra.Command{
	Use:   "serve [run-id]",
	Short: "Expose run diagnostics over HTTP",
	Long: `Serves /status, /runs/{id}/history and /metrics for a checkpointed run.
The checkpoint is re-read on every request, so a loop running in another
process can be observed live.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.ServeOptions{RunID: "default"}
		if len(args) > 0 {
			opts.RunID = args[0]
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.WorkDir, _ = cmd.Flags().GetString("dir")
		opts.Addr, _ = cmd.Flags().GetString("addr")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		if err := cli.ExecuteServe(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (overrides serve.addr)")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")
}
