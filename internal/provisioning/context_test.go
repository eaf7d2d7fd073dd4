package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
)

func TestNewState(t *testing.T) {
	t.Parallel()
	state := NewState()

	require.NotNil(t, state)
	assert.Empty(t, state.Env)
	assert.Empty(t, state.Results)
}

func TestNewContext(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	fake := hosttest.New()

	ctx := NewContext(context.Background(), cfg, fake, nil, nil, nil)

	require.NotNil(t, ctx)
	assert.Equal(t, cfg, ctx.Config)
	assert.Equal(t, fake, ctx.Host)
	assert.NotNil(t, ctx.State)
	assert.NotNil(t, ctx.Observer)
	assert.NotNil(t, ctx.Logger)
	assert.NotNil(t, ctx.Timeouts)
	assert.Nil(t, ctx.Metrics)
}

func TestNewContext_ObserverImplementsLogger(t *testing.T) {
	t.Parallel()
	observer := NewMockObserver()
	ctx := NewContext(context.Background(), config.Default(), hosttest.New(), nil, nil, observer)

	// Observer and Logger should point to the same object
	assert.Equal(t, ctx.Observer, ctx.Logger)
	assert.Same(t, observer, ctx.Observer)
}

func TestContext_Exec_AppliesEnv(t *testing.T) {
	t.Parallel()
	fake := hosttest.New()
	ctx := NewContext(context.Background(), config.Default(), fake, nil, nil, NewMockObserver())
	ctx.State.Env = []string{"VIRTUAL_ENV=/srv/jftf/venv"}

	_, err := ctx.Exec().Run(ctx, host.Command{Name: "python", Args: []string{"--version"}})
	require.NoError(t, err)
	_, err = ctx.Exec().Run(ctx, host.Command{Name: "apt-get", Args: []string{"update"}, Sudo: true})
	require.NoError(t, err)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"VIRTUAL_ENV=/srv/jftf/venv"}, calls[0].Command.Env)
	assert.Empty(t, calls[1].Command.Env, "sudo commands do not inherit the environment")
}

func TestContext_Exec_WithoutState(t *testing.T) {
	t.Parallel()
	fake := hosttest.New()
	ctx := &Context{Context: context.Background(), Host: fake}

	assert.Equal(t, fake, ctx.Exec())
}

func TestContext_Exec_Instrumented(t *testing.T) {
	t.Parallel()
	fake := hosttest.New()
	ctx := NewContext(context.Background(), config.Default(), fake, nil, nil, NewMockObserver())
	ctx.Metrics = NewMetrics()

	_, err := ctx.Exec().Run(ctx, host.Command{Name: "dpkg-query"})
	require.NoError(t, err)

	assert.Len(t, fake.Calls(), 1)
	assert.Equal(t, 1, countSamples(t, ctx.Metrics, "jftf_setup_commands_total"))
}
