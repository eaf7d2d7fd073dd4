package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	require.NoError(t, Default().Validate())
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:    "unknown target kind",
			mutate:  func(c *Config) { c.Target.Kind = "docker" },
			wantErr: "invalid target.kind",
		},
		{
			name: "ssh target without host",
			mutate: func(c *Config) {
				c.Target.Kind = TargetSSH
				c.ProjectRoot = "/srv/jftf"
			},
			wantErr: "target.host is required",
		},
		{
			name: "ssh target without project root",
			mutate: func(c *Config) {
				c.Target = TargetConfig{Kind: TargetSSH, Host: "dev", User: "jftf", KeyFile: "/k", Port: 22}
			},
			wantErr: "project_root is required",
		},
		{
			name:    "schema with quote",
			mutate:  func(c *Config) { c.Database.Schema = "jftf'cmdb" },
			wantErr: "database.schema",
		},
		{
			name:    "user with dash",
			mutate:  func(c *Config) { c.Database.User = "jftf-dev" },
			wantErr: "database.user",
		},
		{
			name:    "sql backend without dsn",
			mutate:  func(c *Config) { c.Database.Admin.Backend = DatabaseAdminSQL },
			wantErr: "database.admin.dsn is required",
		},
		{
			name: "dbus over ssh",
			mutate: func(c *Config) {
				c.Target = TargetConfig{Kind: TargetSSH, Host: "dev", User: "jftf", KeyFile: "/k", Port: 22}
				c.ProjectRoot = "/srv/jftf"
				c.Services.Backend = ServiceBackendDBus
			},
			wantErr: "only works for local targets",
		},
		{
			name:    "unknown step",
			mutate:  func(c *Config) { c.Steps["docker"] = StepConfig{} },
			wantErr: "unknown step",
		},
		{
			name:    "bad failure policy",
			mutate:  func(c *Config) { c.Steps[StepRsyslog] = StepConfig{OnFailure: "ignore"} },
			wantErr: "invalid on_failure",
		},
		{
			name:    "bad prompt style",
			mutate:  func(c *Config) { c.UI.Prompt = "tui" },
			wantErr: "invalid ui.prompt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
