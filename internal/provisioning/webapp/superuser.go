package webapp

import (
	"errors"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/django"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const superuserPhase = config.StepSuperuser

// SuperuserProvisioner creates the Django administrative user.
type SuperuserProvisioner struct{}

// NewSuperuserProvisioner creates a new superuser provisioner.
func NewSuperuserProvisioner() *SuperuserProvisioner {
	return &SuperuserProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *SuperuserProvisioner) Name() string {
	return superuserPhase
}

// Provision implements the provisioning.Phase interface.
// The credentials are only present in the createsuperuser invocation's
// environment. An account left from an earlier run is reported, not failed.
func (p *SuperuserProvisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config.Django
	su := django.Superuser{
		Username: cfg.SuperuserUsername,
		Password: cfg.SuperuserPassword,
		Email:    cfg.SuperuserEmail,
	}

	provisioning.LogResourceCreating(ctx.Observer, superuserPhase, "superuser", su.Username)
	_, err := newManage(ctx).CreateSuperuser(ctx, su)
	switch {
	case errors.Is(err, django.ErrSuperuserExists):
		provisioning.LogResourceExists(ctx.Observer, superuserPhase, "superuser", su.Username)
		return nil
	case err != nil:
		return err
	}
	provisioning.LogResourceCreated(ctx.Observer, superuserPhase, "superuser", su.Username)
	return nil
}
