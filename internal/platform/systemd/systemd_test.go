package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/coreos/go-systemd/v22/dbus"
	godbus "github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
)

func TestUnitName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "rsyslog.service", UnitName("rsyslog"))
	assert.Equal(t, "rabbitmq-server.service", UnitName("rabbitmq-server.service"))
	assert.Equal(t, "multi-user.target", UnitName("multi-user.target"))
}

func TestSystemctl(t *testing.T) {
	t.Parallel()

	fake := hosttest.New()
	m := NewSystemctl(fake)
	ctx := context.Background()

	require.NoError(t, m.Enable(ctx, "rabbitmq-server"))
	require.NoError(t, m.Start(ctx, "rabbitmq-server"))
	require.NoError(t, m.Restart(ctx, "rsyslog"))
	require.NoError(t, m.Close())

	assert.Equal(t, []string{
		"sudo systemctl enable rabbitmq-server.service",
		"sudo systemctl start rabbitmq-server.service",
		"sudo systemctl restart rsyslog.service",
	}, fake.Commands())
}

func TestSystemctl_Failure(t *testing.T) {
	t.Parallel()

	fake := hosttest.New()
	fake.Fail(hosttest.Prefix("sudo", "systemctl", "restart"), 5, "Unit rsyslog.service not found.")

	err := NewSystemctl(fake).Restart(context.Background(), "rsyslog")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restart rsyslog")
}

func TestSystemctl_Status(t *testing.T) {
	t.Parallel()

	fake := hosttest.New()
	fake.On(hosttest.Prefix("systemctl", "is-active", "rabbitmq-server.service"), host.Result{Stdout: "active\n"})
	fake.On(hosttest.Prefix("systemctl", "is-active", "rsyslog.service"), host.Result{Stdout: "inactive\n", ExitCode: 3})
	fake.Fail(hosttest.Prefix("systemctl", "is-active", "broken.service"), 1, "Failed to connect to bus")

	m := NewSystemctl(fake)
	ctx := context.Background()

	state, err := m.Status(ctx, "rabbitmq-server")
	require.NoError(t, err)
	assert.Equal(t, "active", state)

	state, err = m.Status(ctx, "rsyslog")
	require.NoError(t, err)
	assert.Equal(t, "inactive", state)

	_, err = m.Status(ctx, "broken")
	assert.Error(t, err)
}

// stubDBus records calls and answers job results.
type stubDBus struct {
	calls     []string
	jobResult string
	startErr  error
	state     string
	closed    bool
}

func (s *stubDBus) EnableUnitFilesContext(_ context.Context, files []string, _ bool, _ bool) (bool, []dbus.EnableUnitFileChange, error) {
	s.calls = append(s.calls, "enable "+files[0])
	return true, nil, nil
}

func (s *stubDBus) ReloadContext(context.Context) error {
	s.calls = append(s.calls, "reload")
	return nil
}

func (s *stubDBus) StartUnitContext(_ context.Context, name string, mode string, ch chan<- string) (int, error) {
	s.calls = append(s.calls, "start "+name+" "+mode)
	if s.startErr != nil {
		return 0, s.startErr
	}
	ch <- s.jobResult
	return 1, nil
}

func (s *stubDBus) RestartUnitContext(_ context.Context, name string, mode string, ch chan<- string) (int, error) {
	s.calls = append(s.calls, "restart "+name+" "+mode)
	ch <- s.jobResult
	return 2, nil
}

func (s *stubDBus) GetUnitPropertyContext(_ context.Context, unit string, propertyName string) (*dbus.Property, error) {
	s.calls = append(s.calls, "property "+unit+" "+propertyName)
	return &dbus.Property{Name: propertyName, Value: godbus.MakeVariant(s.state)}, nil
}

func (s *stubDBus) Close() { s.closed = true }

func TestDBus(t *testing.T) {
	t.Parallel()

	stub := &stubDBus{jobResult: "done", state: "active"}
	d := &DBus{conn: stub}
	ctx := context.Background()

	require.NoError(t, d.Enable(ctx, "rabbitmq-server"))
	require.NoError(t, d.Start(ctx, "rabbitmq-server"))
	require.NoError(t, d.Restart(ctx, "rsyslog"))
	state, err := d.Status(ctx, "rabbitmq-server")
	require.NoError(t, err)
	assert.Equal(t, "active", state)
	require.NoError(t, d.Close())

	assert.Equal(t, []string{
		"enable rabbitmq-server.service",
		"reload",
		"start rabbitmq-server.service replace",
		"restart rsyslog.service replace",
		"property rabbitmq-server.service ActiveState",
	}, stub.calls)
	assert.True(t, stub.closed)
}

func TestDBus_JobFailed(t *testing.T) {
	t.Parallel()

	d := &DBus{conn: &stubDBus{jobResult: "failed"}}

	err := d.Start(context.Background(), "rabbitmq-server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `job result "failed"`)
}

func TestDBus_RequestFailed(t *testing.T) {
	t.Parallel()

	d := &DBus{conn: &stubDBus{startErr: errors.New("access denied")}}

	err := d.Start(context.Background(), "rabbitmq-server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dbus start request")
}

func TestWait_ContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wait(ctx, "start", "rabbitmq-server", make(chan string))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
