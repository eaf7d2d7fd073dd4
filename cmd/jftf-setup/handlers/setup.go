// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/orchestration"
	"github.com/jftf/jftf-setup/internal/platform/mariadb"
	"github.com/jftf/jftf-setup/internal/platform/systemd"
	"github.com/jftf/jftf-setup/internal/provisioning"
	"github.com/jftf/jftf-setup/internal/ui/confirm"
	"github.com/jftf/jftf-setup/internal/util/prerequisites"
)

// ErrPrivileged is returned when the provisioner is started as root.
var ErrPrivileged = errors.New("refusing to run as root")

// Reconciler interface for testing - matches orchestration.Reconciler.
type Reconciler interface {
	Reconcile(pctx *provisioning.Context) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig builds the configuration from defaults, file and environment.
	loadConfig = config.Load

	// loadTimeouts reads timeout overrides from the environment.
	loadTimeouts = config.LoadTimeouts

	getwd = os.Getwd

	// newHost opens the target machine described by cfg.
	newHost = func(cfg *config.Config, timeouts *config.Timeouts) (host.Host, error) {
		if cfg.Target.Kind != config.TargetSSH {
			return host.NewLocal(timeouts.Command), nil
		}
		remote, err := host.NewSSHFromKeyFile(host.SSHConfig{
			Host:           cfg.Target.Host,
			Port:           cfg.Target.Port,
			User:           cfg.Target.User,
			DialTimeout:    timeouts.SSHDial,
			MaxRetries:     timeouts.RetryMaxAttempts,
			RetryDelay:     timeouts.RetryInitialDelay,
			CommandTimeout: timeouts.Command,
		}, cfg.Target.KeyFile)
		if err != nil {
			return nil, err
		}
		return remote, nil
	}

	// newServiceManager creates the service manager for the configured backend.
	newServiceManager = func(ctx context.Context, cfg *config.Config, h host.Host) (systemd.Manager, error) {
		if cfg.Services.Backend == config.ServiceBackendDBus {
			conn, err := systemd.NewDBus(ctx)
			if err != nil {
				return nil, err
			}
			return conn, nil
		}
		return systemd.NewSystemctl(h), nil
	}

	// newAdminFactory returns the lazy database admin connection for the
	// configured backend. exec yields the host the cli backend runs mysql on.
	newAdminFactory = func(cfg *config.Config, exec func() host.Host) provisioning.DatabaseAdminFactory {
		if cfg.Database.Admin.Backend == config.DatabaseAdminSQL {
			dsn := cfg.Database.Admin.DSN
			return func(ctx context.Context) (mariadb.Admin, error) {
				admin, err := mariadb.NewSQLAdmin(ctx, dsn)
				if err != nil {
					return nil, err
				}
				return admin, nil
			}
		}
		return func(context.Context) (mariadb.Admin, error) {
			return mariadb.NewCLIAdmin(exec()), nil
		}
	}

	// newPrompter creates the confirmation prompt.
	newPrompter = func(style config.PromptStyle) confirm.Prompter {
		return confirm.New(style, os.Stdin, os.Stderr)
	}

	// newReconciler creates the provisioning reconciler.
	newReconciler = func() Reconciler {
		return orchestration.NewReconciler()
	}

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetupOptions are the flags of the setup command.
type SetupOptions struct {
	ConfigPath  string
	ProjectRoot string
	Yes         bool
	Verbose     bool
}

// Setup provisions the JFTF development environment on the configured target.
//
// The effective user is checked before anything else and the operator must
// confirm the run unless opts.Yes is set. Declining exits successfully without
// side effects.
func Setup(ctx context.Context, opts SetupOptions) error {
	cfg, err := resolveConfig(opts.ConfigPath, opts.ProjectRoot)
	if err != nil {
		return err
	}
	timeouts := loadTimeouts()

	logger := provisioning.NewLogger(stderr, opts.Verbose)
	observer := provisioning.NewConsoleObserver(logger)

	h, err := newHost(cfg, timeouts)
	if err != nil {
		return fmt.Errorf("failed to open target: %w", err)
	}
	defer func() { _ = h.Close() }()

	if err := checkPrivileges(ctx, h); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	if err := checkPrereqs(ctx, h, prerequisites.DefaultTools(cfg.Python.Interpreter, cfg.Packages)).Error(); err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if !opts.Yes {
		fmt.Fprintln(stderr, confirm.Warning(
			fmt.Sprintf("jftf-setup will provision %s", h.Name()),
			fmt.Sprintf("The database schema %q will be dropped and recreated.", cfg.Database.Schema),
			fmt.Sprintf("Project root: %s", cfg.ProjectRoot),
		))
		ok, err := newPrompter(cfg.UI.Prompt).Confirm(ctx, "Do you want to continue?")
		if err != nil {
			return &ExitError{Code: 1, Err: fmt.Errorf("confirmation failed: %w", err)}
		}
		if !ok {
			fmt.Fprintln(stdout, "Setup cancelled, nothing was changed.")
			return nil
		}
	}

	services, err := newServiceManager(ctx, cfg, h)
	if err != nil {
		return fmt.Errorf("failed to connect to the service manager: %w", err)
	}
	defer func() { _ = services.Close() }()

	var pctx *provisioning.Context
	admin := newAdminFactory(cfg, func() host.Host { return pctx.Exec() })
	pctx = provisioning.NewContext(ctx, cfg, h, services, admin, observer)
	pctx.Timeouts = timeouts
	if cfg.Metrics.Textfile != "" {
		pctx.Metrics = provisioning.NewMetrics()
	}

	for _, ve := range provisioning.Preflight(pctx) {
		logger.Warn(ve.Error())
	}

	start := time.Now()
	err = newReconciler().Reconcile(pctx)
	printResults(stdout, pctx.State.Results)
	if err != nil {
		if schemaRecreated(pctx.State.Results) {
			logger.Warn("the database schema was already recreated; changes are not rolled back")
		}
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Fprintf(stdout, "%s JFTF development environment ready on %s %s\n",
		readyStyle.Render(checkMark), h.Name(), dimStyle.Render(fmt.Sprintf("(%s)", time.Since(start).Round(time.Second))))
	return nil
}

// resolveConfig loads the configuration and fills in the project root.
func resolveConfig(configPath, projectRoot string) (*config.Config, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if projectRoot != "" {
		cfg.ProjectRoot = projectRoot
	}
	if cfg.ProjectRoot == "" {
		wd, err := getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cfg.ResolveProjectRoot(wd)
	}
	if cfg.Target.Kind == config.TargetLocal && !filepath.IsAbs(cfg.ProjectRoot) {
		abs, err := filepath.Abs(cfg.ProjectRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve project root: %w", err)
		}
		cfg.ProjectRoot = abs
	}
	return cfg, nil
}

// checkPrivileges refuses an effective UID of 0 on the target.
func checkPrivileges(ctx context.Context, h host.Host) error {
	uid, err := h.EffectiveUID(ctx)
	if err != nil {
		return fmt.Errorf("failed to determine the effective user on %s: %w", h.Name(), err)
	}
	if uid == 0 {
		return fmt.Errorf("%w on %s: run jftf-setup as a regular user with sudo rights", ErrPrivileged, h.Name())
	}
	return nil
}

func schemaRecreated(results []provisioning.PhaseResult) bool {
	for _, r := range results {
		if r.Phase == config.StepDatabase && r.Status == provisioning.PhaseCompleted {
			return true
		}
	}
	return false
}
