package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmftio/bethe/internal/cli"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [run-id]",
	Short: "Run the self-consistency loop until convergence",
	Long: `Iterates the external solver pipeline until the hybridization stops
changing or the iteration budget is exhausted. Progress is checkpointed, so
an interrupted run can be continued with --resume.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := cli.RunOptions{RunID: "default"}
		if len(args) > 0 {
			opts.RunID = args[0]
		}
		opts.ConfigPath, _ = cmd.Flags().GetString("config")
		opts.WorkDir, _ = cmd.Flags().GetString("dir")
		opts.Resume, _ = cmd.Flags().GetBool("resume")
		opts.Serve, _ = cmd.Flags().GetBool("serve")
		opts.Debug, _ = cmd.Flags().GetBool("debug")
		opts.LogFile, _ = cmd.Flags().GetString("log-file")

		if err := cli.ExecuteRun(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("resume", false, "Continue from the last checkpoint instead of starting fresh")
	runCmd.Flags().Bool("serve", false, "Expose /status, /history and /metrics over HTTP while running")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")
	runCmd.Flags().String("log-file", "", "Also write a debug-level JSON log to this file")
}
