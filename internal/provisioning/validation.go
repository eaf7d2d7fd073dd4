package provisioning

import (
	"fmt"
	"strings"

	"github.com/jftf/jftf-setup/internal/config"
)

// ValidationError represents a preflight error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// Preflight checks the project files the enabled phases need on the target.
// It never changes the host.
func Preflight(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config
	h := ctx.Host

	requireDir := func(field, path string) {
		ok, err := h.IsDir(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("cannot check %s: %v", path, err), Severity: "error"})
		case !ok:
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("directory %s does not exist", path), Severity: "error"})
		}
	}
	requireFile := func(field, path, severity string) {
		ok, err := h.Exists(ctx, path)
		switch {
		case err != nil:
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("cannot check %s: %v", path, err), Severity: "error"})
		case !ok:
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%s does not exist", path), Severity: severity})
		}
	}

	// --- Project layout ---

	requireDir("project_root", cfg.ProjectRoot)

	if cfg.StepEnabled(config.StepPipDependencies) {
		requireFile("python.manifest", cfg.ManifestPath(), "error")
	}
	if cfg.StepEnabled(config.StepMigrations) || cfg.StepEnabled(config.StepSuperuser) {
		requireFile("django.manage_path", cfg.ManagePath(), "error")
	}
	if cfg.StepEnabled(config.StepLegacyViews) {
		requireDir("legacy_views.dir", cfg.LegacyViewsDir())
	}

	// rsyslog.conf appears once the apt phase installed rsyslog.
	if cfg.StepEnabled(config.StepRsyslog) {
		requireFile("rsyslog.config_path", cfg.Rsyslog.ConfigPath, "warning")
	}

	// --- Credentials ---

	defaults := config.Default()
	if cfg.Database.Password == defaults.Database.Password {
		errs = append(errs, ValidationError{
			Field:    "database.password",
			Message:  "using the built-in development password",
			Severity: "warning",
		})
	}
	if cfg.RabbitMQ.Password == defaults.RabbitMQ.Password {
		errs = append(errs, ValidationError{
			Field:    "rabbitmq.password",
			Message:  "using the built-in development password",
			Severity: "warning",
		})
	}

	return errs
}

// ValidationFailed joins the errors of a preflight report, or returns nil
// when only warnings were found.
func ValidationFailed(report []ValidationError) error {
	var errMsgs []string
	for _, ve := range report {
		if ve.IsError() {
			errMsgs = append(errMsgs, ve.Error())
		}
	}
	if len(errMsgs) == 0 {
		return nil
	}
	return fmt.Errorf("preflight validation failed:\n  %s", strings.Join(errMsgs, "\n  "))
}
