package logging

import (
	"errors"
	"fmt"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/rsyslog"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const phase = config.StepRsyslog

// Provisioner patches rsyslog.conf and restarts the daemon.
type Provisioner struct{}

// NewProvisioner creates a new rsyslog provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config.Rsyslog
	if ctx.Services == nil {
		return errors.New("no service manager configured")
	}

	opts := rsyslog.PatchOptions{Uncomment: cfg.Uncomment}
	if cfg.AllowedSender != "" {
		opts.Append = []string{cfg.AllowedSender}
	}

	res, err := rsyslog.Apply(ctx, ctx.Exec(), cfg.ConfigPath, opts)
	if err != nil {
		return err
	}
	for _, directive := range res.Absent {
		ctx.Logger.Printf("[%s] %s not found in %s, left unchanged", phase, directive, cfg.ConfigPath)
	}
	if res.Changed {
		provisioning.LogResourceUpdated(ctx.Observer, phase, "config", cfg.ConfigPath)
	} else {
		provisioning.LogResourceExists(ctx.Observer, phase, "config", cfg.ConfigPath)
	}

	ctx.Logger.Printf("[%s] Restarting %s...", phase, cfg.Service)
	if err := ctx.Services.Restart(ctx, cfg.Service); err != nil {
		return fmt.Errorf("failed to restart %s: %w", cfg.Service, err)
	}
	return nil
}
