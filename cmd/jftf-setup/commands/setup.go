package commands

import (
	"github.com/spf13/cobra"

	"github.com/jftf/jftf-setup/cmd/jftf-setup/handlers"
)

// Setup returns the command that provisions the development environment.
//
// Optional flags:
//
//	--config, -c: Path to the configuration YAML file (default: jftf-setup.yaml if present)
//	--project-root: JFTF checkout (default: parent of the working directory)
//	--yes, -y: Skip the confirmation prompt
func Setup() *cobra.Command {
	var opts handlers.SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Install and configure the JFTF development environment",
		Long: `Install and configure everything a JFTF developer machine needs.

Phases, in order:
  1. apt-dependencies   OS packages (MariaDB, rsyslog, RabbitMQ, build tools)
  2. python-venv        virtual environment in the project root
  3. pip-dependencies   Python requirements
  4. database           database user, schemas, privileges and time zone
  5. migrations         Django migrations
  6. legacy-views       legacy CMDB views
  7. superuser          Django administrative user
  8. rsyslog            remote syslog reception
  9. rabbitmq           broker service and administrative user

The primary database schema is dropped and recreated on every run.
jftf-setup must not be run as root; it uses sudo where needed.

Examples:
  # Provision this machine, asking for confirmation
  jftf-setup setup

  # Provision with a config file, without asking
  jftf-setup setup -c jftf-setup.yaml --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Verbose = verbose
			return handlers.Setup(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: jftf-setup.yaml)")
	cmd.Flags().StringVar(&opts.ProjectRoot, "project-root", "", "JFTF checkout (default: parent of the working directory)")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
