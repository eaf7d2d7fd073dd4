package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jftf/jftf-setup/internal/host"
)

// Metrics records phase and command results of one run. It is written as a
// node_exporter textfile so a development VM can expose its last run.
type Metrics struct {
	registry *prometheus.Registry

	phaseTotal    *prometheus.CounterVec
	phaseDuration *prometheus.GaugeVec
	commandsTotal *prometheus.CounterVec
	commandTime   *prometheus.HistogramVec
	lastRun       prometheus.Gauge
}

// NewMetrics creates metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		phaseTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jftf",
				Subsystem: "setup",
				Name:      "phase_total",
				Help:      "Number of phase executions by phase and status",
			},
			[]string{"phase", "status"},
		),
		phaseDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "jftf",
				Subsystem: "setup",
				Name:      "phase_duration_seconds",
				Help:      "Duration of the last execution of each phase in seconds",
			},
			[]string{"phase"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "jftf",
				Subsystem: "setup",
				Name:      "commands_total",
				Help:      "Number of external commands by program and result",
			},
			[]string{"program", "result"},
		),
		commandTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "jftf",
				Subsystem: "setup",
				Name:      "command_duration_seconds",
				Help:      "Duration of external commands in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
			[]string{"program"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "jftf",
			Subsystem: "setup",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	m.registry.MustRegister(m.phaseTotal, m.phaseDuration, m.commandsTotal, m.commandTime, m.lastRun)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordPhase records a phase outcome.
func (m *Metrics) RecordPhase(phase string, status PhaseStatus, duration time.Duration) {
	m.phaseTotal.WithLabelValues(phase, string(status)).Inc()
	m.phaseDuration.WithLabelValues(phase).Set(duration.Seconds())
}

// RecordCommand records one external command.
func (m *Metrics) RecordCommand(program, result string, duration time.Duration) {
	m.commandsTotal.WithLabelValues(program, result).Inc()
	m.commandTime.WithLabelValues(program).Observe(duration.Seconds())
}

// WriteTextfile stamps the run time and writes all metrics to path in the
// Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	m.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// InstrumentHost returns h with every Run recorded.
func (m *Metrics) InstrumentHost(h host.Host) host.Host {
	if _, ok := h.(*instrumentedHost); ok {
		return h
	}
	return &instrumentedHost{Host: h, metrics: m}
}

type instrumentedHost struct {
	host.Host
	metrics *Metrics
}

// Run implements host.Host.
func (i *instrumentedHost) Run(ctx context.Context, cmd host.Command) (host.Result, error) {
	start := time.Now()
	res, err := i.Host.Run(ctx, cmd)
	i.metrics.RecordCommand(cmd.Name, commandResult(err), time.Since(start))
	return res, err
}

func commandResult(err error) string {
	var exitErr *host.ExitError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &exitErr):
		return "exit_error"
	default:
		return "error"
	}
}
