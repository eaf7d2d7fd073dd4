package system

import (
	"errors"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/apt"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const (
	phase        = config.StepAptDependencies
	resourceType = "package"
)

// Provisioner installs the configured OS packages.
type Provisioner struct{}

// NewProvisioner creates a new package provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	packages := ctx.Config.Packages
	installer := apt.NewInstaller(ctx.Exec())

	ctx.Logger.Printf("[%s] Ensuring %d packages...", phase, len(packages))

	var errs []error
	for i, name := range packages {
		if err := EnsurePackage(ctx, phase, installer, name); err != nil {
			ctx.Logger.Printf("[%s] %v", phase, err)
			errs = append(errs, err)
		}
		ctx.Observer.Progress(phase, i+1, len(packages))
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	ctx.Logger.Printf("[%s] All packages present", phase)
	return nil
}

// EnsurePackage installs name unless dpkg reports it installed, logging the
// outcome under phaseName. Other phases use it for their own prerequisites.
func EnsurePackage(ctx *provisioning.Context, phaseName string, installer *apt.Installer, name string) error {
	outcome, err := installer.EnsureInstalled(ctx, name)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseName, resourceType, name, err)
		return err
	}
	switch outcome {
	case apt.AlreadyInstalled:
		provisioning.LogResourceExists(ctx.Observer, phaseName, resourceType, name)
	case apt.Installed:
		provisioning.LogResourceCreated(ctx.Observer, phaseName, resourceType, name)
	}
	return nil
}
