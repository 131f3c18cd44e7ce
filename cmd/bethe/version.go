package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmftio/bethe"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bethe",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bethe version %s\n", strings.TrimSpace(bethe.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
