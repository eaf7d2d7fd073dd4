package config

import (
	"path/filepath"
)

// Phase names, shared by the pipeline and the steps overrides.
const (
	StepAptDependencies = "apt-dependencies"
	StepPythonVenv      = "python-venv"
	StepPipDependencies = "pip-dependencies"
	StepDatabase        = "database"
	StepMigrations      = "migrations"
	StepLegacyViews     = "legacy-views"
	StepSuperuser       = "superuser"
	StepRsyslog         = "rsyslog"
	StepRabbitMQ        = "rabbitmq"
)

// StepNames lists every phase in pipeline order.
var StepNames = []string{
	StepAptDependencies,
	StepPythonVenv,
	StepPipDependencies,
	StepDatabase,
	StepMigrations,
	StepLegacyViews,
	StepSuperuser,
	StepRsyslog,
	StepRabbitMQ,
}

// DefaultPackages are the OS packages a JFTF development host needs.
var DefaultPackages = []string{
	"python3",
	"python3-pip",
	"python3-dev",
	"build-essential",
	"pkg-config",
	"libmariadb-dev",
	"mariadb-server",
	"mariadb-client",
	"rsyslog",
	"rabbitmq-server",
}

// Default returns the built-in development configuration.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Kind: TargetLocal,
			Port: 22,
		},
		Packages: append([]string(nil), DefaultPackages...),
		Python: PythonConfig{
			Interpreter: "python3",
			VenvPackage: "python3-venv",
			VenvDir:     "venv",
			Manifest:    "requirements.txt",
		},
		Database: DatabaseConfig{
			User:       "jftf_dev",
			Password:   "jftf_dev",
			Host:       "localhost",
			Schema:     "jftf_cmdb",
			MockSchema: "test_jftf_cmdb",
			Timezone:   "+00:00",
			Admin: DatabaseAdminConfig{
				Backend: DatabaseAdminCLI,
			},
		},
		Django: DjangoConfig{
			ManagePath:        "manage.py",
			SuperuserUsername: "jftf_dev",
			SuperuserPassword: "jftf_dev",
			SuperuserEmail:    "jftf_dev@jftf.dev",
		},
		LegacyViews: LegacyViewsConfig{
			Dir:    "jftf_cmdb_legacy",
			Script: "./init_legacy_db_views.sh",
		},
		Rsyslog: RsyslogConfig{
			ConfigPath: "/etc/rsyslog.conf",
			Service:    "rsyslog",
			Uncomment: []string{
				`module(load="imudp")`,
				`input(type="imudp" port="514")`,
			},
			AllowedSender: "$AllowedSender UDP, 127.0.0.1",
		},
		RabbitMQ: RabbitMQConfig{
			Service:  "rabbitmq-server",
			User:     "jftf_dev",
			Password: "jftf_dev",
			VHost:    "/",
			Tags:     []string{"administrator"},
		},
		Services: ServicesConfig{
			Backend: ServiceBackendSystemctl,
		},
		Steps: map[string]StepConfig{},
		UI: UIConfig{
			Prompt: PromptLine,
		},
	}
}

// Step returns the effective settings for the named phase.
// Phases are enabled and fatal unless overridden.
func (c *Config) Step(name string) StepConfig {
	enabled := true
	step := StepConfig{Enabled: &enabled, OnFailure: FailureFatal}

	override, ok := c.Steps[name]
	if !ok {
		return step
	}
	if override.Enabled != nil {
		step.Enabled = override.Enabled
	}
	if override.OnFailure != "" {
		step.OnFailure = override.OnFailure
	}
	return step
}

// StepEnabled reports whether the named phase should run.
func (c *Config) StepEnabled(name string) bool {
	step := c.Step(name)
	return step.Enabled == nil || *step.Enabled
}

// ResolveProjectRoot fills ProjectRoot from the working directory when unset.
// The default is the parent of workDir, matching a checkout where the
// provisioner is started from a scripts directory.
func (c *Config) ResolveProjectRoot(workDir string) {
	if c.ProjectRoot == "" {
		c.ProjectRoot = filepath.Dir(filepath.Clean(workDir))
	}
}

// ProjectPath resolves p against ProjectRoot unless it is already absolute.
func (c *Config) ProjectPath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectRoot, p)
}

// VenvDir returns the absolute virtual environment directory.
func (c *Config) VenvDir() string {
	return c.ProjectPath(c.Python.VenvDir)
}

// ManifestPath returns the absolute dependency manifest path.
func (c *Config) ManifestPath() string {
	return c.ProjectPath(c.Python.Manifest)
}

// ManagePath returns the absolute management command entry point.
func (c *Config) ManagePath() string {
	return c.ProjectPath(c.Django.ManagePath)
}

// LegacyViewsDir returns the absolute legacy views directory.
func (c *Config) LegacyViewsDir() string {
	return c.ProjectPath(c.LegacyViews.Dir)
}
