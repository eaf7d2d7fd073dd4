package config

// FailurePolicy decides what the pipeline does when a phase fails.
type FailurePolicy string

const (
	// FailureFatal aborts the pipeline on failure.
	FailureFatal FailurePolicy = "fatal"
	// FailureWarn logs the failure and continues with the next phase.
	FailureWarn FailurePolicy = "warn"
)

// TargetKind selects where provisioning commands run.
type TargetKind string

const (
	// TargetLocal runs commands on the machine running jftf-setup.
	TargetLocal TargetKind = "local"
	// TargetSSH runs commands on a remote machine over SSH.
	TargetSSH TargetKind = "ssh"
)

// ServiceBackend selects how system services are managed.
type ServiceBackend string

const (
	// ServiceBackendSystemctl shells out to "sudo systemctl".
	ServiceBackendSystemctl ServiceBackend = "systemctl"
	// ServiceBackendDBus talks to systemd over the system D-Bus.
	ServiceBackendDBus ServiceBackend = "dbus"
)

// DatabaseAdminBackend selects how administrative SQL is executed.
type DatabaseAdminBackend string

const (
	// DatabaseAdminCLI runs statements through "sudo mysql".
	DatabaseAdminCLI DatabaseAdminBackend = "cli"
	// DatabaseAdminSQL runs statements through the MySQL driver using an admin DSN.
	DatabaseAdminSQL DatabaseAdminBackend = "sql"
)

// PromptStyle selects how the confirmation question is rendered.
type PromptStyle string

const (
	// PromptLine reads a y/n answer line by line.
	PromptLine PromptStyle = "line"
	// PromptForm renders an interactive confirm form when stdin is a terminal.
	PromptForm PromptStyle = "form"
)

// Config holds the provisioner configuration.
type Config struct {
	// ProjectRoot is the JFTF checkout holding the manifest, manage.py and
	// the legacy views directory. Empty means the parent of the working directory.
	ProjectRoot string `yaml:"project_root"`

	Target   TargetConfig   `yaml:"target"`
	Packages []string       `yaml:"packages"`
	Python   PythonConfig   `yaml:"python"`
	Database DatabaseConfig `yaml:"database"`
	Django   DjangoConfig   `yaml:"django"`

	LegacyViews LegacyViewsConfig `yaml:"legacy_views"`
	Rsyslog     RsyslogConfig     `yaml:"rsyslog"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Services    ServicesConfig    `yaml:"services"`

	// Steps overrides per-phase behavior, keyed by phase name.
	Steps map[string]StepConfig `yaml:"steps"`

	Metrics MetricsConfig `yaml:"metrics"`
	UI      UIConfig      `yaml:"ui"`
}

// TargetConfig describes the machine being provisioned.
type TargetConfig struct {
	Kind    TargetKind `yaml:"kind"`
	Host    string     `yaml:"host"`
	Port    int        `yaml:"port"`
	User    string     `yaml:"user"`
	KeyFile string     `yaml:"key_file"`
}

// PythonConfig describes the virtual environment and its dependency manifest.
type PythonConfig struct {
	Interpreter string `yaml:"interpreter"`
	VenvPackage string `yaml:"venv_package"`
	VenvDir     string `yaml:"venv_dir"` // relative to ProjectRoot unless absolute
	Manifest    string `yaml:"manifest"` // relative to ProjectRoot unless absolute
}

// DatabaseConfig describes the application database account and schemas.
type DatabaseConfig struct {
	User       string              `yaml:"user"`
	Password   string              `yaml:"password"`
	Host       string              `yaml:"host"`
	Schema     string              `yaml:"schema"`
	MockSchema string              `yaml:"mock_schema"`
	Timezone   string              `yaml:"timezone"`
	Admin      DatabaseAdminConfig `yaml:"admin"`
}

// DatabaseAdminConfig describes how administrative statements reach the server.
type DatabaseAdminConfig struct {
	Backend DatabaseAdminBackend `yaml:"backend"`
	// DSN is a go-sql-driver/mysql data source name, used by the sql backend.
	DSN string `yaml:"dsn"`
}

// DjangoConfig describes the management command and the administrative user.
type DjangoConfig struct {
	ManagePath        string `yaml:"manage_path"` // relative to ProjectRoot unless absolute
	SuperuserUsername string `yaml:"superuser_username"`
	SuperuserPassword string `yaml:"superuser_password"`
	SuperuserEmail    string `yaml:"superuser_email"`
}

// LegacyViewsConfig describes the legacy CMDB view initialization script.
type LegacyViewsConfig struct {
	Dir    string `yaml:"dir"` // relative to ProjectRoot unless absolute
	Script string `yaml:"script"`
}

// RsyslogConfig describes the remote logging patch.
type RsyslogConfig struct {
	ConfigPath string `yaml:"config_path"`
	Service    string `yaml:"service"`
	// Uncomment lists directives that must appear uncommented.
	Uncomment []string `yaml:"uncomment"`
	// AllowedSender is appended once if missing.
	AllowedSender string `yaml:"allowed_sender"`
}

// RabbitMQConfig describes the broker service and its administrative account.
type RabbitMQConfig struct {
	Service  string   `yaml:"service"`
	User     string   `yaml:"user"`
	Password string   `yaml:"password"`
	VHost    string   `yaml:"vhost"`
	Tags     []string `yaml:"tags"`
}

// ServicesConfig selects the service manager backend.
type ServicesConfig struct {
	Backend ServiceBackend `yaml:"backend"`
}

// StepConfig overrides the behavior of a single phase.
type StepConfig struct {
	Enabled   *bool         `yaml:"enabled"`
	OnFailure FailurePolicy `yaml:"on_failure"`
}

// MetricsConfig configures the phase metrics output.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after a run when set.
	Textfile string `yaml:"textfile"`
}

// UIConfig configures the interactive surface.
type UIConfig struct {
	Prompt PromptStyle `yaml:"prompt"`
}
