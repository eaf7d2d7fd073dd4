package broker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/platform/rabbitmq"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

const phase = config.StepRabbitMQ

// Provisioner enables the broker service and configures its user.
type Provisioner struct{}

// NewProvisioner creates a new broker provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.enable(ctx); err != nil {
		return err
	}
	return p.configureUser(ctx)
}

func (p *Provisioner) enable(ctx *provisioning.Context) error {
	service := ctx.Config.RabbitMQ.Service
	if ctx.Services == nil {
		return errors.New("no service manager configured")
	}

	ctx.Logger.Printf("[%s] Enabling and starting %s...", phase, service)
	if err := ctx.Services.Enable(ctx, service); err != nil {
		return fmt.Errorf("failed to enable %s: %w", service, err)
	}
	if err := ctx.Services.Start(ctx, service); err != nil {
		return fmt.Errorf("failed to start %s: %w", service, err)
	}

	state, err := ctx.Services.Status(ctx, service)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", service, err)
	}
	ctx.Logger.Printf("[%s] %s is %s", phase, service, state)
	return nil
}

func (p *Provisioner) configureUser(ctx *provisioning.Context) error {
	cfg := ctx.Config.RabbitMQ
	ctl := rabbitmq.NewCtl(ctx.Exec())

	opts := rabbitmq.WaitOptions{
		Notify: func(attempt int, err error, next time.Duration) {
			ctx.Logger.Printf("[%s] Broker not ready (attempt %d): retrying in %v", phase, attempt, next)
			ctx.Logger.Debugf("[%s] %v", phase, err)
		},
	}
	if t := ctx.Timeouts; t != nil {
		opts.Timeout = t.BrokerWait
		opts.MaxAttempts = t.RetryMaxAttempts
		opts.InitialDelay = t.RetryInitialDelay
	}
	if err := ctl.WaitReady(ctx, opts); err != nil {
		return err
	}

	exists, err := ctl.UserExists(ctx, cfg.User)
	if err != nil {
		return err
	}
	if exists {
		if err := ctl.ChangePassword(ctx, cfg.User, cfg.Password); err != nil {
			return err
		}
		provisioning.LogResourceUpdated(ctx.Observer, phase, "user", cfg.User)
	} else {
		if err := ctl.AddUser(ctx, cfg.User, cfg.Password); err != nil {
			return err
		}
		provisioning.LogResourceCreated(ctx.Observer, phase, "user", cfg.User)
	}

	if err := ctl.SetUserTags(ctx, cfg.User, cfg.Tags...); err != nil {
		return err
	}
	if err := ctl.GrantAll(ctx, cfg.VHost, cfg.User); err != nil {
		return err
	}
	ctx.Logger.Printf("[%s] %s has tags [%s] and full permissions on %s",
		phase, cfg.User, strings.Join(cfg.Tags, ","), cfg.VHost)
	return nil
}
