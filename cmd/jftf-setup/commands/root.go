// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// verbose enables debug logging for every subcommand.
var verbose bool

// Root returns the root command for the jftf-setup CLI.
//
// Errors are printed by main, which also maps them to the exit status.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jftf-setup",
		Short:         "Provision a JFTF development environment",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(Setup())
	cmd.AddCommand(Plan())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
