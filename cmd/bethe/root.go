package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bethe",
	Short: "bethe drives a self-consistent impurity calculation on the Bethe lattice",
	Long: `bethe iterates an external impurity solver to self-consistency: it feeds
the solver a hybridization function, rebuilds the self-energy and local
Green's function from the solver output, and closes the loop through the
semicircular lattice transform.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "bethe.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("dir", "", "Solver working directory (overrides run.workdir)")
}
