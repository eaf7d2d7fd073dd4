package testing

import (
	"github.com/jftf/jftf-setup/internal/config"
)

// DefaultProjectRoot is the checkout location used by test configurations.
const DefaultProjectRoot = "/srv/jftf"

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a new ConfigBuilder from the built-in defaults
// with the project root set to DefaultProjectRoot.
func NewConfigBuilder() *ConfigBuilder {
	cfg := config.Default()
	cfg.ProjectRoot = DefaultProjectRoot
	return &ConfigBuilder{cfg: *cfg}
}

// WithProjectRoot sets the project root.
func (b *ConfigBuilder) WithProjectRoot(root string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.ProjectRoot = root
	return newBuilder
}

// WithPackages replaces the OS package list.
func (b *ConfigBuilder) WithPackages(pkgs ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Packages = cloneStringSlice(pkgs)
	return newBuilder
}

// WithStep overrides a phase. An empty policy keeps the default.
func (b *ConfigBuilder) WithStep(name string, enabled bool, policy config.FailurePolicy) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Steps[name] = config.StepConfig{Enabled: &enabled, OnFailure: policy}
	return newBuilder
}

// WithDatabase sets the account and schemas.
func (b *ConfigBuilder) WithDatabase(user, password, schema, mockSchema string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Database.User = user
	newBuilder.cfg.Database.Password = password
	newBuilder.cfg.Database.Schema = schema
	newBuilder.cfg.Database.MockSchema = mockSchema
	return newBuilder
}

// WithTimezone sets the database time zone.
func (b *ConfigBuilder) WithTimezone(tz string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Database.Timezone = tz
	return newBuilder
}

// WithRabbitMQUser sets the broker account.
func (b *ConfigBuilder) WithRabbitMQUser(user, password string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.RabbitMQ.User = user
	newBuilder.cfg.RabbitMQ.Password = password
	return newBuilder
}

// Build returns the configuration.
func (b *ConfigBuilder) Build() *config.Config {
	cfg := b.clone().cfg
	return &cfg
}

func (b *ConfigBuilder) clone() *ConfigBuilder {
	cfg := b.cfg
	cfg.Packages = cloneStringSlice(b.cfg.Packages)
	cfg.Rsyslog.Uncomment = cloneStringSlice(b.cfg.Rsyslog.Uncomment)
	cfg.RabbitMQ.Tags = cloneStringSlice(b.cfg.RabbitMQ.Tags)
	cfg.Steps = make(map[string]config.StepConfig, len(b.cfg.Steps))
	for k, v := range b.cfg.Steps {
		cfg.Steps[k] = v
	}
	return &ConfigBuilder{cfg: cfg}
}

func cloneStringSlice(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// MinimalConfig returns the defaults rooted at DefaultProjectRoot.
func MinimalConfig() *config.Config {
	return NewConfigBuilder().Build()
}
