// Package commands implements the Mei Mei CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with all subcommands registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meimei",
		Short: "Mei Mei - persona chat bot for Discord",
		Long: `Mei Mei is a persona-driven Discord chat bot backed by Gemini.
She replies in character, remembers every exchange per channel, and keeps
talking (in fallback mode) even when the generation backend is down.

Examples:
  meimei serve
  meimei serve --config ./meimei.yaml --verbose`,
		Version: version,
	}

	rootCmd.AddCommand(
		newServeCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the YAML config overlay")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
