package commands

import (
	"github.com/spf13/cobra"

	"github.com/jftf/jftf-setup/cmd/jftf-setup/handlers"
)

// Plan returns the command that lists the phases a setup run would execute.
func Plan() *cobra.Command {
	var configPath, projectRoot string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the phases setup would run",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Plan(configPath, projectRoot)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: jftf-setup.yaml)")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "JFTF checkout (default: parent of the working directory)")

	return cmd
}
