package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of colloquy",
	// The version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "colloquy version %s\n", strings.TrimSpace(colloquy.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
