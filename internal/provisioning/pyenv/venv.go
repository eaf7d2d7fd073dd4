package pyenv

import (
	"fmt"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/apt"
	"github.com/jftf/jftf-setup/internal/platform/python"
	"github.com/jftf/jftf-setup/internal/provisioning"
	"github.com/jftf/jftf-setup/internal/provisioning/system"
)

const venvPhase = config.StepPythonVenv

// VenvProvisioner creates and activates the project's virtual environment.
type VenvProvisioner struct{}

// NewVenvProvisioner creates a new virtual environment provisioner.
func NewVenvProvisioner() *VenvProvisioner {
	return &VenvProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *VenvProvisioner) Name() string {
	return venvPhase
}

// Provision implements the provisioning.Phase interface.
// An existing environment is reused. Activation failures abort the run
// even under the warn policy, since every later phase needs the environment.
func (p *VenvProvisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	h := ctx.Exec()

	if pkg := cfg.Python.VenvPackage; pkg != "" {
		if err := system.EnsurePackage(ctx, venvPhase, apt.NewInstaller(h), pkg); err != nil {
			return err
		}
	}

	venv := python.Venv{Dir: cfg.VenvDir()}
	manager := python.NewManager(h, cfg.Python.Interpreter)

	exists, err := manager.Exists(ctx, venv)
	if err != nil {
		return fmt.Errorf("failed to check virtual environment: %w", err)
	}
	if exists {
		provisioning.LogResourceExists(ctx.Observer, venvPhase, "virtualenv", venv.Dir)
	} else {
		provisioning.LogResourceCreating(ctx.Observer, venvPhase, "virtualenv", venv.Dir)
		if err := manager.Create(ctx, venv); err != nil {
			return err
		}
		provisioning.LogResourceCreated(ctx.Observer, venvPhase, "virtualenv", venv.Dir)
	}

	env, err := manager.Activate(ctx, venv)
	if err != nil {
		return provisioning.Fatal(err)
	}
	ctx.State.Env = env
	ctx.Logger.Printf("[%s] Activated %s", venvPhase, venv.Dir)
	return nil
}
