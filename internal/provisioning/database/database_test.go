package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host/hosttest"
	"github.com/jftf/jftf-setup/internal/platform/mariadb"
	"github.com/jftf/jftf-setup/internal/provisioning"
	jtest "github.com/jftf/jftf-setup/internal/testing"
)

var expectedStatements = []string{
	"CREATE OR REPLACE USER 'jftf_dev'@'localhost' IDENTIFIED BY 'jftf_dev'",
	"DROP DATABASE IF EXISTS jftf_cmdb",
	"CREATE DATABASE jftf_cmdb",
	"GRANT ALL PRIVILEGES ON jftf_cmdb.* TO 'jftf_dev'@'localhost' WITH GRANT OPTION",
	"GRANT ALL PRIVILEGES ON test_jftf_cmdb.* TO 'jftf_dev'@'localhost' WITH GRANT OPTION",
	"SET GLOBAL time_zone = '+00:00'",
	"SELECT @@global.time_zone",
	"FLUSH PRIVILEGES",
}

func TestProvisionerNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "database", NewProvisioner().Name())
	assert.Equal(t, "legacy-views", NewLegacyViewsProvisioner().Name())
}

func TestProvision_RunsSubStepsInOrder(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, hosttest.New())

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, expectedStatements, deps.Admin.Statements)
	assert.True(t, deps.Admin.Closed)
	assert.Len(t, deps.Observer.EventsOfType(provisioning.EventResourceDeleting), 1)
	assert.Len(t, deps.Observer.EventsOfType(provisioning.EventProgress), 5)
}

func TestProvision_SubStepFailureNamesStep(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		failing    string
		wantPrefix string
		wantRan    int
	}{
		{"create user", expectedStatements[0], "create user:", 1},
		{"drop schema", expectedStatements[1], "recreate schema:", 2},
		{"create schema", expectedStatements[2], "recreate schema:", 3},
		{"grant mock schema", expectedStatements[4], "grant privileges:", 5},
		{"flush", expectedStatements[7], "flush privileges:", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := jtest.MinimalConfig()
			ctx, deps := jtest.NewProvisioningContext(t, cfg, hosttest.New())
			deps.Admin.Errors[tt.failing] = errors.New("ERROR 1045 (28000): Access denied")

			err := NewProvisioner().Provision(ctx)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantPrefix)
			assert.Len(t, deps.Admin.Statements, tt.wantRan, "later sub-steps must not run")
			assert.True(t, deps.Admin.Closed)
		})
	}
}

func TestProvision_CreateAfterDropReportsDroppedSchema(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, hosttest.New())
	deps.Admin.Errors[expectedStatements[2]] = errors.New("disk full")

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema jftf_cmdb was dropped but could not be created")
}

func TestProvision_TimezoneMismatch(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, hosttest.New())
	deps.Admin.Timezone = "SYSTEM"

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, mariadb.ErrTimezoneMismatch))
	assert.NotContains(t, deps.Admin.Statements, "FLUSH PRIVILEGES", "flush must not run after a mismatch")
}

func TestProvision_InvalidIdentifierRejectedFirst(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().WithDatabase("jftf_dev", "pw", "jftf-cmdb; DROP", "test_jftf_cmdb").Build()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, hosttest.New())
	connected := false
	ctx.Database = func(context.Context) (mariadb.Admin, error) {
		connected = true
		return deps.Admin, nil
	}

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database settings")
	assert.False(t, connected)
	assert.Empty(t, deps.Admin.Statements)
}

func TestProvision_ConnectFails(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	ctx, _ := jtest.NewProvisioningContext(t, cfg, hosttest.New())
	ctx.Database = func(context.Context) (mariadb.Admin, error) {
		return nil, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused")
	}

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to the database server")
}

func TestProvision_NoAdminFactory(t *testing.T) {
	t.Parallel()
	ctx, _ := jtest.NewProvisioningContext(t, jtest.MinimalConfig(), hosttest.New())
	ctx.Database = nil

	assert.EqualError(t, NewProvisioner().Provision(ctx), "no database admin configured")
}

func TestProvision_CLIAdmin(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Fresh()
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)
	ctx.Database = func(context.Context) (mariadb.Admin, error) {
		return mariadb.NewCLIAdmin(ctx.Exec()), nil
	}

	require.NoError(t, NewProvisioner().Provision(ctx))

	calls := fake.Find(hosttest.Prefix("sudo", "mysql"))
	require.Len(t, calls, len(expectedStatements))
	for i, call := range calls {
		assert.Equal(t, expectedStatements[i]+";\n", call.Stdin)
		assert.NotContains(t, call.Argv(), "jftf_dev", "credentials stay out of argv")
	}
}
