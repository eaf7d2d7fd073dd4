package provisioning

import (
	"context"
	"time"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/platform/systemd"
)

// PhaseStatus is the outcome of a single phase.
type PhaseStatus string

const (
	// PhaseCompleted means the phase succeeded.
	PhaseCompleted PhaseStatus = "completed"
	// PhaseFailed means the phase failed and aborted the pipeline.
	PhaseFailed PhaseStatus = "failed"
	// PhaseWarned means the phase failed under the warn policy and the pipeline continued.
	PhaseWarned PhaseStatus = "warned"
	// PhaseSkipped means the phase was disabled.
	PhaseSkipped PhaseStatus = "skipped"
)

// PhaseResult records how a phase ended.
type PhaseResult struct {
	Phase    string
	Status   PhaseStatus
	Duration time.Duration
	Err      error
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Env is added to every later unprivileged command once the virtual
	// environment is activated (populated by the python-venv phase).
	Env []string

	// Results lists phase outcomes in execution order (populated by the pipeline).
	Results []PhaseResult
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	State    *State
	Host     host.Host
	Services systemd.Manager
	Database DatabaseAdminFactory
	Observer Observer
	Logger   Logger
	Metrics  *Metrics
	Timeouts *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	h host.Host,
	services systemd.Manager,
	database DatabaseAdminFactory,
	observer Observer,
) *Context {
	if observer == nil {
		observer = NewConsoleObserver(nil)
	}
	return &Context{
		Context:  ctx,
		Config:   cfg,
		State:    NewState(),
		Host:     h,
		Services: services,
		Database: database,
		Observer: observer,
		Logger:   observer,
		Timeouts: config.LoadTimeouts(),
	}
}

// Exec returns the host phases run commands on, with the activated
// environment applied.
func (c *Context) Exec() host.Host {
	h := c.Host
	if c.Metrics != nil {
		h = c.Metrics.InstrumentHost(h)
	}
	if c.State == nil {
		return h
	}
	return host.WithEnv(h, c.State.Env)
}
