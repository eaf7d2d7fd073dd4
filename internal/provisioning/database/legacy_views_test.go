package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
	jtest "github.com/jftf/jftf-setup/internal/testing"
)

const legacyDir = jtest.DefaultProjectRoot + "/jftf_cmdb_legacy"

func TestLegacyViews_RunsScriptInDirectory(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().WithDatabase("jftf_dev", "s3cret", "jftf_cmdb", "test_jftf_cmdb").Build()
	fake := jtest.NewHostFixture(cfg).Fresh()
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewLegacyViewsProvisioner().Provision(ctx))

	calls := fake.Find(hosttest.Prefix("./init_legacy_db_views.sh"))
	require.Len(t, calls, 1)
	cmd := calls[0].Command
	assert.Equal(t, []string{"s3cret", "localhost"}, cmd.Args)
	assert.Equal(t, legacyDir, cmd.Dir)
	assert.NotContains(t, cmd.String(), "s3cret", "the password is masked in logs")
}

func TestLegacyViews_MissingDirectory(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := hosttest.New()
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	err := NewLegacyViewsProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLegacyViewsDirMissing))
	assert.Empty(t, fake.Calls(), "the script must not run")
}

func TestLegacyViews_ScriptFails(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Fresh()
	fake.Fail(hosttest.Prefix("./init_legacy_db_views.sh"), 1, "ERROR 1146: Table doesn't exist")
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	err := NewLegacyViewsProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "legacy views script failed")

	var exitErr *host.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.Code)
}
