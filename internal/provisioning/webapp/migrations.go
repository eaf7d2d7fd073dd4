package webapp

import (
	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/django"
	"github.com/jftf/jftf-setup/internal/platform/python"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const migrationsPhase = config.StepMigrations

// MigrationsProvisioner applies the project's database migrations.
type MigrationsProvisioner struct{}

// NewMigrationsProvisioner creates a new migrations provisioner.
func NewMigrationsProvisioner() *MigrationsProvisioner {
	return &MigrationsProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *MigrationsProvisioner) Name() string {
	return migrationsPhase
}

// Provision implements the provisioning.Phase interface.
// Success is the exit status of manage.py, not the presence of output.
func (p *MigrationsProvisioner) Provision(ctx *provisioning.Context) error {
	manage := newManage(ctx)

	ctx.Logger.Printf("[%s] Applying migrations...", migrationsPhase)
	res, err := manage.Migrate(ctx)
	if err != nil {
		return err
	}
	ctx.Logger.Debugf("[%s] %s", migrationsPhase, res.Stdout)
	ctx.Logger.Printf("[%s] Migrations applied", migrationsPhase)
	return nil
}

// newManage runs manage.py with the virtual environment's interpreter.
func newManage(ctx *provisioning.Context) *django.Manage {
	venv := python.Venv{Dir: ctx.Config.VenvDir()}
	return django.NewManage(ctx.Exec(), venv.Python(), ctx.Config.ManagePath())
}
