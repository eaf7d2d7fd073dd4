package broker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
	"github.com/jftf/jftf-setup/internal/provisioning"
	jtest "github.com/jftf/jftf-setup/internal/testing"
)

func rabbitmqctl(args ...string) hosttest.Matcher {
	return hosttest.Prefix(append([]string{"sudo", "rabbitmqctl"}, args...)...)
}

func TestProvisionerName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "rabbitmq", NewProvisioner().Name())
}

func TestProvision_FreshBroker(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Fresh()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, []string{
		"enable rabbitmq-server",
		"start rabbitmq-server",
		"status rabbitmq-server",
	}, deps.Services.Calls)

	assert.Equal(t, []string{
		"sudo rabbitmqctl await_startup",
		"sudo rabbitmqctl --silent list_users",
		"sudo rabbitmqctl add_user jftf_dev",
		"sudo rabbitmqctl set_user_tags jftf_dev administrator",
		"sudo rabbitmqctl set_permissions -p / jftf_dev .* .* .*",
	}, fake.Commands())
	assert.Len(t, deps.Observer.EventsOfType(provisioning.EventResourceCreated), 1)

	add := fake.Find(rabbitmqctl("add_user"))
	require.Len(t, add, 1)
	assert.Equal(t, cfg.RabbitMQ.Password+"\n", add[0].Stdin)
}

func TestProvision_ExistingUserGetsPasswordReset(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Provisioned()
	ctx, deps := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.False(t, fake.Ran(rabbitmqctl("add_user")))
	assert.True(t, fake.Ran(rabbitmqctl("change_password", "jftf_dev")))
	assert.Len(t, deps.Observer.EventsOfType(provisioning.EventResourceUpdated), 1)
}

func TestProvision_PasswordMaskedInErrors(t *testing.T) {
	t.Parallel()
	cfg := jtest.NewConfigBuilder().WithRabbitMQUser("jftf", "hunter2").Build()
	fake := jtest.NewHostFixture(cfg).Fresh()
	fake.Fail(rabbitmqctl("add_user"), 70, "Error: internal error")
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add user jftf")
	assert.NotContains(t, err.Error(), "hunter2")
	assert.False(t, fake.Ran(rabbitmqctl("set_user_tags")))
}

func TestProvision_WaitsForBroker(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Fresh()
	fake.Once(rabbitmqctl("await_startup"), host.Result{ExitCode: 69, Stderr: "Error: unable to perform an operation on node"})
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Len(t, fake.Find(rabbitmqctl("await_startup")), 2)
}

func TestProvision_BrokerNeverReady(t *testing.T) {
	t.Parallel()
	cfg := jtest.MinimalConfig()
	fake := jtest.NewHostFixture(cfg).Fresh()
	fake.Fail(rabbitmqctl("await_startup"), 69, "Error: unable to perform an operation on node")
	ctx, _ := jtest.NewProvisioningContext(t, cfg, fake)

	err := NewProvisioner().Provision(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker did not become ready")
	assert.False(t, fake.Ran(rabbitmqctl("--silent", "list_users")))
}

func TestProvision_ServiceFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		failing string
		wantErr string
	}{
		{"enable rabbitmq-server", "failed to enable rabbitmq-server"},
		{"start rabbitmq-server", "failed to start rabbitmq-server"},
		{"status rabbitmq-server", "failed to query rabbitmq-server"},
	}

	for _, tt := range tests {
		t.Run(tt.failing, func(t *testing.T) {
			t.Parallel()
			cfg := jtest.MinimalConfig()
			fake := jtest.NewHostFixture(cfg).Fresh()
			ctx, deps := jtest.NewProvisioningContext(t, cfg, fake)
			deps.Services.Errors[tt.failing] = errors.New("unit not found")

			err := NewProvisioner().Provision(ctx)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Empty(t, fake.Calls(), "rabbitmqctl must not run")
		})
	}
}
