package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// identifierPattern matches names that are safe to splice into SQL unquoted.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate checks the configuration for common errors and returns a detailed error if validation fails.
func (c *Config) Validate() error {
	if err := c.validateTarget(); err != nil {
		return fmt.Errorf("target validation failed: %w", err)
	}
	if err := c.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}
	if err := c.validateBackends(); err != nil {
		return err
	}
	if err := c.validateSteps(); err != nil {
		return fmt.Errorf("steps validation failed: %w", err)
	}

	if c.Python.Interpreter == "" {
		return fmt.Errorf("python.interpreter is required")
	}
	if c.Python.VenvDir == "" || c.Python.Manifest == "" {
		return fmt.Errorf("python.venv_dir and python.manifest are required")
	}
	if c.Django.ManagePath == "" {
		return fmt.Errorf("django.manage_path is required")
	}
	if c.Django.SuperuserUsername == "" || c.Django.SuperuserEmail == "" {
		return fmt.Errorf("django.superuser_username and django.superuser_email are required")
	}
	if c.Rsyslog.ConfigPath == "" || c.Rsyslog.Service == "" {
		return fmt.Errorf("rsyslog.config_path and rsyslog.service are required")
	}
	if c.RabbitMQ.User == "" || c.RabbitMQ.Service == "" {
		return fmt.Errorf("rabbitmq.user and rabbitmq.service are required")
	}

	switch c.UI.Prompt {
	case PromptLine, PromptForm:
	default:
		return fmt.Errorf("invalid ui.prompt %q: must be %q or %q", c.UI.Prompt, PromptLine, PromptForm)
	}
	return nil
}

func (c *Config) validateTarget() error {
	switch c.Target.Kind {
	case TargetLocal:
		return nil
	case TargetSSH:
		if c.Target.Host == "" {
			return fmt.Errorf("target.host is required for ssh targets")
		}
		if c.Target.User == "" {
			return fmt.Errorf("target.user is required for ssh targets")
		}
		if c.Target.KeyFile == "" {
			return fmt.Errorf("target.key_file is required for ssh targets")
		}
		if c.Target.Port < 0 || c.Target.Port > 65535 {
			return fmt.Errorf("invalid target.port %d", c.Target.Port)
		}
		if c.ProjectRoot == "" {
			return fmt.Errorf("project_root is required for ssh targets")
		}
		return nil
	default:
		return fmt.Errorf("invalid target.kind %q: must be %q or %q", c.Target.Kind, TargetLocal, TargetSSH)
	}
}

func (c *Config) validateDatabase() error {
	db := c.Database
	for field, value := range map[string]string{
		"user":        db.User,
		"schema":      db.Schema,
		"mock_schema": db.MockSchema,
	} {
		if !identifierPattern.MatchString(value) {
			return fmt.Errorf("database.%s %q must match %s", field, value, identifierPattern)
		}
	}
	if db.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if strings.ContainsAny(db.Host, "'\\") {
		return fmt.Errorf("database.host %q contains quote characters", db.Host)
	}
	if db.Timezone == "" {
		return fmt.Errorf("database.timezone is required")
	}
	return nil
}

func (c *Config) validateBackends() error {
	switch c.Database.Admin.Backend {
	case DatabaseAdminCLI:
	case DatabaseAdminSQL:
		if c.Database.Admin.DSN == "" {
			return fmt.Errorf("database.admin.dsn is required for the %q backend", DatabaseAdminSQL)
		}
	default:
		return fmt.Errorf("invalid database.admin.backend %q", c.Database.Admin.Backend)
	}

	switch c.Services.Backend {
	case ServiceBackendSystemctl:
	case ServiceBackendDBus:
		if c.Target.Kind == TargetSSH {
			return fmt.Errorf("services.backend %q only works for local targets", ServiceBackendDBus)
		}
	default:
		return fmt.Errorf("invalid services.backend %q", c.Services.Backend)
	}
	return nil
}

func (c *Config) validateSteps() error {
	for name, step := range c.Steps {
		if !slices.Contains(StepNames, name) {
			return fmt.Errorf("unknown step %q: must be one of %v", name, StepNames)
		}
		switch step.OnFailure {
		case "", FailureFatal, FailureWarn:
		default:
			return fmt.Errorf("step %q: invalid on_failure %q", name, step.OnFailure)
		}
	}
	return nil
}
