package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/mariadb"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const phase = config.StepDatabase

// Provisioner configures the application account and schemas.
type Provisioner struct{}

// NewProvisioner creates a new database provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

type subStep struct {
	name string
	run  func(context.Context) error
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	cfg := ctx.Config.Database
	settings := mariadb.Settings{
		Account: mariadb.Account{
			User:     cfg.User,
			Host:     cfg.Host,
			Password: cfg.Password,
		},
		Schema:     cfg.Schema,
		MockSchema: cfg.MockSchema,
		Timezone:   cfg.Timezone,
	}
	// Invalid names are rejected before a connection is opened.
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid database settings: %w", err)
	}
	if ctx.Database == nil {
		return errors.New("no database admin configured")
	}

	admin, err := ctx.Database(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to the database server: %w", err)
	}
	defer func() {
		if closeErr := admin.Close(); closeErr != nil {
			ctx.Logger.Printf("[%s] Failed to close admin connection: %v", phase, closeErr)
		}
	}()

	configurator, err := mariadb.NewConfigurator(admin, settings)
	if err != nil {
		return err
	}

	principal := cfg.User + "@" + cfg.Host
	recreated := false
	steps := []subStep{
		{"create user", func(c context.Context) error {
			if err := configurator.CreateUser(c); err != nil {
				return err
			}
			provisioning.LogResourceCreated(ctx.Observer, phase, "user", principal)
			return nil
		}},
		{"recreate schema", func(c context.Context) error {
			provisioning.LogResourceDeleting(ctx.Observer, phase, "schema", cfg.Schema)
			if err := configurator.RecreateSchema(c); err != nil {
				return err
			}
			recreated = true
			provisioning.LogResourceCreated(ctx.Observer, phase, "schema", cfg.Schema)
			return nil
		}},
		{"grant privileges", func(c context.Context) error {
			if err := configurator.GrantPrivileges(c); err != nil {
				return err
			}
			ctx.Logger.Printf("[%s] Granted %s on %s and %s", phase, principal, cfg.Schema, cfg.MockSchema)
			return nil
		}},
		{"set time zone", func(c context.Context) error {
			if err := configurator.SetTimezone(c); err != nil {
				return err
			}
			ctx.Logger.Printf("[%s] Global time zone is %s", phase, cfg.Timezone)
			return nil
		}},
		{"flush privileges", configurator.FlushPrivileges},
	}

	for i, step := range steps {
		if err := step.run(ctx); err != nil {
			if recreated {
				ctx.Logger.Printf("[%s] Schema %s was recreated empty and is left as is", phase, cfg.Schema)
			}
			return fmt.Errorf("%s: %w", step.name, err)
		}
		ctx.Observer.Progress(phase, i+1, len(steps))
	}
	return nil
}
