package commands

import (
	"github.com/spf13/cobra"

	"financas/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "financas",
		Short:   "Personal finance form: expenses, balance and postal code lookup",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newLookupCommand())
	rootCmd.AddCommand(newEventsCommand())

	return rootCmd
}
