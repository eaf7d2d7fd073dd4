package handlers

import (
	"context"
	"io"
	"testing"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/platform/systemd"
	"github.com/jftf/jftf-setup/internal/provisioning"
	"github.com/jftf/jftf-setup/internal/ui/confirm"
	"github.com/jftf/jftf-setup/internal/util/prerequisites"
)

// factories is a snapshot of the swappable handler dependencies.
type factories struct {
	loadConfig        func(string) (*config.Config, error)
	loadTimeouts      func() *config.Timeouts
	getwd             func() (string, error)
	newHost           func(*config.Config, *config.Timeouts) (host.Host, error)
	newServiceManager func(context.Context, *config.Config, host.Host) (systemd.Manager, error)
	newAdminFactory   func(*config.Config, func() host.Host) provisioning.DatabaseAdminFactory
	newPrompter       func(config.PromptStyle) confirm.Prompter
	newReconciler     func() Reconciler
	checkPrereqs      func(context.Context, host.Host, []prerequisites.Tool) *prerequisites.CheckResults
	systemdRunning    func() bool
	stdout            io.Writer
	stderr            io.Writer
}

// saved holds the production factories, captured before any test runs.
var saved = saveFactories()

func saveFactories() factories {
	return factories{
		loadConfig:        loadConfig,
		loadTimeouts:      loadTimeouts,
		getwd:             getwd,
		newHost:           newHost,
		newServiceManager: newServiceManager,
		newAdminFactory:   newAdminFactory,
		newPrompter:       newPrompter,
		newReconciler:     newReconciler,
		checkPrereqs:      checkPrereqs,
		systemdRunning:    systemdRunning,
		stdout:            stdout,
		stderr:            stderr,
	}
}

func (f factories) restore() {
	loadConfig = f.loadConfig
	loadTimeouts = f.loadTimeouts
	getwd = f.getwd
	newHost = f.newHost
	newServiceManager = f.newServiceManager
	newAdminFactory = f.newAdminFactory
	newPrompter = f.newPrompter
	newReconciler = f.newReconciler
	checkPrereqs = f.checkPrereqs
	systemdRunning = f.systemdRunning
	stdout = f.stdout
	stderr = f.stderr
}

// saveAndRestoreFactories restores every factory variable when t ends.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	orig := saveFactories()
	t.Cleanup(orig.restore)
}
