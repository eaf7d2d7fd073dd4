package database

import (
	"errors"
	"fmt"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const legacyPhase = config.StepLegacyViews

// ErrLegacyViewsDirMissing is returned when the legacy views directory does not exist.
var ErrLegacyViewsDirMissing = errors.New("legacy views directory not found")

// LegacyViewsProvisioner runs the legacy CMDB view initialization script.
type LegacyViewsProvisioner struct{}

// NewLegacyViewsProvisioner creates a new legacy views provisioner.
func NewLegacyViewsProvisioner() *LegacyViewsProvisioner {
	return &LegacyViewsProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *LegacyViewsProvisioner) Name() string {
	return legacyPhase
}

// Provision implements the provisioning.Phase interface.
// The script receives the database password and host as arguments and runs
// inside the legacy views directory; the provisioner's own working
// directory is not changed.
func (p *LegacyViewsProvisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config
	dir := cfg.LegacyViewsDir()
	h := ctx.Exec()

	ok, err := h.IsDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", dir, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrLegacyViewsDirMissing, dir)
	}

	ctx.Logger.Printf("[%s] Running %s in %s...", legacyPhase, cfg.LegacyViews.Script, dir)
	res, err := h.Run(ctx, host.Command{
		Name:    cfg.LegacyViews.Script,
		Args:    []string{cfg.Database.Password, cfg.Database.Host},
		Dir:     dir,
		Secrets: []string{cfg.Database.Password},
	})
	if err != nil {
		return fmt.Errorf("legacy views script failed: %w", err)
	}
	if out := res.Output(); out != "" {
		ctx.Logger.Debugf("[%s] %s", legacyPhase, out)
	}
	provisioning.LogResourceCreated(ctx.Observer, legacyPhase, "views", cfg.Database.Schema)
	return nil
}
