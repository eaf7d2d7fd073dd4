package pyenv

import (
	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/python"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const pipPhase = config.StepPipDependencies

// PipProvisioner installs the dependency manifest into the virtual environment.
type PipProvisioner struct{}

// NewPipProvisioner creates a new pip provisioner.
func NewPipProvisioner() *PipProvisioner {
	return &PipProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *PipProvisioner) Name() string {
	return pipPhase
}

// Provision implements the provisioning.Phase interface.
func (p *PipProvisioner) Provision(ctx *provisioning.Context) error {
	manifest := ctx.Config.ManifestPath()
	pip := python.NewPip(ctx.Exec(), python.Venv{Dir: ctx.Config.VenvDir()})

	ctx.Logger.Printf("[%s] Installing requirements from %s...", pipPhase, manifest)
	if err := pip.InstallRequirements(ctx, manifest); err != nil {
		return err
	}
	provisioning.LogResourceUpdated(ctx.Observer, pipPhase, "requirements", manifest)

	// The listing is diagnostic only.
	out, err := pip.List(ctx)
	if err != nil {
		ctx.Logger.Debugf("[%s] %v", pipPhase, err)
		return nil
	}
	ctx.Logger.Debugf("[%s] Installed packages:\n%s", pipPhase, out)
	return nil
}
