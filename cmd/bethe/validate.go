package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmftio/bethe/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for consistency",
	Long:  `Loads the configuration file, validates every parameter and prints the resulting run plan without starting a run.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		if err := cli.ExecuteValidate(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
