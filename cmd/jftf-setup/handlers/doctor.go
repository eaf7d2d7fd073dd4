package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/platform/systemd"
	"github.com/jftf/jftf-setup/internal/provisioning"
	"github.com/jftf/jftf-setup/internal/util/prerequisites"
)

// systemdUnitDir exists on machines booted with systemd.
const systemdUnitDir = "/run/systemd/system"

var (
	// checkPrereqs looks up tools on the target.
	checkPrereqs = prerequisites.Check

	// systemdRunning reports whether this machine runs systemd.
	systemdRunning = systemd.IsRunning
)

// Doctor checks whether the target is ready for a setup run: the effective
// user, the required tools, systemd and the project layout. Nothing is changed.
func Doctor(ctx context.Context, configPath, projectRoot string) error {
	cfg, err := resolveConfig(configPath, projectRoot)
	if err != nil {
		return err
	}

	h, err := newHost(cfg, loadTimeouts())
	if err != nil {
		return fmt.Errorf("failed to open target: %w", err)
	}
	defer func() { _ = h.Close() }()

	fmt.Fprintln(stdout)
	printHeader(stdout, "jftf-setup doctor: "+h.Name())

	var problems []error

	if err := checkPrivileges(ctx, h); err != nil {
		printRow(stdout, failedStyle.Render(crossMark), "effective user", err.Error())
		problems = append(problems, err)
	} else {
		printRow(stdout, readyStyle.Render(checkMark), "effective user", "not root")
	}

	if err := doctorTools(ctx, cfg, h); err != nil {
		problems = append(problems, err)
	}

	if doctorSystemd(ctx, cfg, h) {
		printRow(stdout, readyStyle.Render(checkMark), "systemd", "running")
	} else {
		printRow(stdout, failedStyle.Render(crossMark), "systemd", "not running")
		problems = append(problems, errors.New("systemd is not the init system of the target"))
	}

	pctx := provisioning.NewContext(ctx, cfg, h, nil, nil,
		provisioning.NewConsoleObserver(provisioning.NewLogger(io.Discard, false)))
	report := provisioning.Preflight(pctx)
	for _, ve := range report {
		indicator := warningStyle.Render(warnMark)
		if ve.IsError() {
			indicator = failedStyle.Render(crossMark)
		}
		printRow(stdout, indicator, ve.Field, ve.Message)
	}
	if err := provisioning.ValidationFailed(report); err != nil {
		problems = append(problems, err)
	} else if len(report) == 0 {
		printRow(stdout, readyStyle.Render(checkMark), "project layout", cfg.ProjectRoot)
	}
	fmt.Fprintln(stdout)

	if err := errors.Join(problems...); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("doctor found problems:\n%w", err)}
	}
	fmt.Fprintln(stdout, readyStyle.Render("Target is ready for jftf-setup."))
	return nil
}

func doctorTools(ctx context.Context, cfg *config.Config, h host.Host) error {
	tools := prerequisites.DefaultTools(cfg.Python.Interpreter, cfg.Packages)
	if cfg.Services.Backend == config.ServiceBackendSystemctl {
		tools = append(tools, prerequisites.ServiceTools()...)
	}
	tools = append(tools, prerequisites.InstalledTools()...)

	results := checkPrereqs(ctx, h, tools)
	for _, r := range results.Results {
		switch {
		case r.Found:
			extra := r.Path
			if r.Version != "" {
				extra = r.Version
			}
			printRow(stdout, readyStyle.Render(checkMark), r.Tool.Name, extra)
		case r.Tool.Required:
			printRow(stdout, failedStyle.Render(crossMark), r.Tool.Name, "missing (apt package "+r.Tool.Package+")")
		default:
			printRow(stdout, dimStyle.Render(skipMark), r.Tool.Name, dimStyle.Render("installed by setup"))
		}
	}
	return results.Error()
}

func doctorSystemd(ctx context.Context, cfg *config.Config, h host.Host) bool {
	if cfg.Target.Kind != config.TargetSSH {
		return systemdRunning()
	}
	ok, err := h.IsDir(ctx, systemdUnitDir)
	return err == nil && ok
}
