package provisioning

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
)

func countSamples(t *testing.T, m *Metrics, name string) int {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return len(mf.GetMetric())
		}
	}
	return 0
}

func TestMetrics_RecordPhase(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.RecordPhase("database", PhaseCompleted, 2*time.Second)
	m.RecordPhase("database", PhaseCompleted, 3*time.Second)
	m.RecordPhase("rsyslog", PhaseFailed, time.Second)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.phaseTotal.WithLabelValues("database", "completed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.phaseTotal.WithLabelValues("rsyslog", "failed")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.phaseDuration.WithLabelValues("database")))
}

func TestMetrics_RecordCommand(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.RecordCommand("apt-get", "success", 100*time.Millisecond)
	m.RecordCommand("apt-get", "exit_error", 100*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("apt-get", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("apt-get", "exit_error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.commandTime))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.RecordPhase("rabbitmq", PhaseCompleted, time.Second)

	path := filepath.Join(t.TempDir(), "jftf_setup.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `jftf_setup_phase_total{phase="rabbitmq",status="completed"} 1`)
	assert.Contains(t, string(data), "jftf_setup_last_run_timestamp_seconds")
}

func TestMetrics_WriteTextfile_BadPath(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "metrics.prom"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write metrics")
}

func TestMetrics_InstrumentHost(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	fake := hosttest.New().Fail(hosttest.Prefix("rabbitmqctl"), 69, "not running")

	h := m.InstrumentHost(fake)
	assert.Same(t, h, m.InstrumentHost(h), "wrapping twice is a no-op")

	_, err := h.Run(context.Background(), host.Command{Name: "mysql"})
	require.NoError(t, err)
	_, err = h.Run(context.Background(), host.Command{Name: "rabbitmqctl"})
	require.Error(t, err)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("mysql", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.commandsTotal.WithLabelValues("rabbitmqctl", "exit_error")))
}

func TestCommandResult(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "success", commandResult(nil))
	assert.Equal(t, "exit_error", commandResult(&host.ExitError{Code: 1}))
	assert.Equal(t, "error", commandResult(errors.New("connection reset")))
}
