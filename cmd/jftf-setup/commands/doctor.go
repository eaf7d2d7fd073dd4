package commands

import (
	"github.com/spf13/cobra"

	"github.com/jftf/jftf-setup/cmd/jftf-setup/handlers"
)

// Doctor returns the command for checking a target before setup.
//
// Optional flags:
//
//	--config, -c: Path to the configuration YAML file
//	--project-root: JFTF checkout (default: parent of the working directory)
func Doctor() *cobra.Command {
	var configPath, projectRoot string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check whether the target is ready for setup",
		Long: `Check whether the target is ready for jftf-setup.

Reports:
  - whether the effective user is root
  - required tools (sudo, apt-get, dpkg-query, the Python interpreter, systemctl)
  - tools installed by setup (mysql, rabbitmqctl, rsyslogd)
  - whether systemd is running
  - the project layout (manifest, manage.py, legacy views)

Nothing on the target is changed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), configPath, projectRoot)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: jftf-setup.yaml)")
	cmd.Flags().StringVar(&projectRoot, "project-root", "", "JFTF checkout (default: parent of the working directory)")

	return cmd
}
