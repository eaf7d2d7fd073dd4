package orchestration

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
	"github.com/jftf/jftf-setup/internal/provisioning"
	jtest "github.com/jftf/jftf-setup/internal/testing"
)

func TestPhases_Order(t *testing.T) {
	t.Parallel()
	var names []string
	for _, p := range Phases() {
		names = append(names, p.Name())
	}
	assert.Equal(t, config.StepNames, names)
}

func TestPlan(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().
		WithStep(config.StepRsyslog, false, "").
		WithStep(config.StepSuperuser, true, config.FailureWarn).
		Build()

	plan := Plan(cfg)

	require.Len(t, plan, len(config.StepNames))
	for _, p := range plan {
		switch p.Name {
		case config.StepRsyslog:
			assert.False(t, p.Enabled)
		case config.StepSuperuser:
			assert.True(t, p.Enabled)
			assert.Equal(t, config.FailureWarn, p.OnFailure)
		default:
			assert.True(t, p.Enabled, p.Name)
			assert.Equal(t, config.FailureFatal, p.OnFailure, p.Name)
		}
	}
}

func TestReconcile_FreshHost(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().WithPackages("mariadb-server", "rsyslog", "rabbitmq-server").Build()
	fake := jtest.NewHostFixture(cfg).Fresh()
	pctx, deps := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewReconciler().Reconcile(pctx))

	require.Len(t, pctx.State.Results, len(config.StepNames))
	for _, r := range pctx.State.Results {
		assert.Equal(t, provisioning.PhaseCompleted, r.Status, r.Phase)
	}
	assert.Equal(t, []string{
		"restart rsyslog",
		"enable rabbitmq-server",
		"start rabbitmq-server",
		"status rabbitmq-server",
	}, deps.Services.Calls)
	assert.True(t, deps.Admin.Closed)
	assert.True(t, fake.Ran(hosttest.Contains("createsuperuser")))
	assert.True(t, fake.Ran(hosttest.Prefix("sudo", "rabbitmqctl", "add_user")))
}

func TestReconcile_StopsAtFailedPhase(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Provisioned()
	fake.Fail(hosttest.Contains("migrate"), 1, "OperationalError")
	pctx, deps := jtest.NewProvisioningContext(t, cfg, fake)

	err := NewReconciler().Reconcile(pctx)

	var phaseErr *provisioning.PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, config.StepMigrations, phaseErr.Phase)
	assert.False(t, fake.Ran(hosttest.Contains("createsuperuser")))
	assert.Empty(t, deps.Services.Calls)
}

func TestReconcile_WarnPolicyContinues(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().WithStep(config.StepLegacyViews, true, config.FailureWarn).Build()
	fake := jtest.NewHostFixture(cfg).Provisioned()
	fake.Fail(hosttest.Prefix("./init_legacy_db_views.sh"), 1, "boom")
	pctx, deps := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewReconciler().Reconcile(pctx))

	assert.Len(t, deps.Observer.EventsOfType(provisioning.EventPhaseWarned), 1)
	assert.True(t, fake.Ran(hosttest.Contains("createsuperuser")))
}

func TestReconcile_WritesMetricsTextfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "jftf_setup.prom")
	builder := jtest.NewConfigBuilder()
	for _, name := range config.StepNames {
		builder = builder.WithStep(name, name == config.StepRsyslog, "")
	}
	cfg := builder.Build()
	cfg.Metrics.Textfile = path
	fake := jtest.NewHostFixture(cfg).Fresh()
	pctx, _ := jtest.NewProvisioningContext(t, cfg, fake)
	pctx.Metrics = provisioning.NewMetrics()

	require.NoError(t, NewReconciler().Reconcile(pctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jftf_setup_phase_total{phase="rsyslog",status="completed"} 1`)
	assert.Contains(t, string(data), `jftf_setup_phase_total{phase="database",status="skipped"} 1`)
}
