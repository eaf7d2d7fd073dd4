package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/jftf/jftf-setup/internal/config"
)

// PhaseError reports the phase that aborted the pipeline.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s phase failed: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// fatalError marks a failure the warn policy cannot downgrade.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as aborting the pipeline whatever the phase's failure
// policy says.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

func isFatal(err error) bool {
	var f *fatalError
	return errors.As(err, &f)
}

// Pipeline runs phases sequentially. Each phase starts only after the
// previous one returned.
type Pipeline struct {
	Phases []Phase
}

// NewPipeline creates a pipeline of phases in execution order.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// Run executes the phases. A disabled phase is skipped without touching the
// host. A failing phase aborts the run with a *PhaseError unless its policy
// is warn, in which case the failure is logged and the next phase runs.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(p.Phases))
	if ctx.State == nil {
		ctx.State = NewState()
	}

	for i, phase := range p.Phases {
		name := phase.Name()
		label := fmt.Sprintf("%s (%d/%d)", name, i+1, len(p.Phases))
		step := stepConfig(ctx.Config, name)

		if step.Enabled != nil && !*step.Enabled {
			LogPhaseSkipped(ctx.Observer, name)
			p.record(ctx, PhaseResult{Phase: name, Status: PhaseSkipped})
			continue
		}

		if ctx.Context != nil && ctx.Err() != nil {
			p.record(ctx, PhaseResult{Phase: name, Status: PhaseFailed, Err: ctx.Err()})
			return &PhaseError{Phase: name, Err: ctx.Err()}
		}

		ctx.Observer.Printf("[%s] starting", label)
		LogPhaseStart(ctx.Observer, name)
		phaseStart := time.Now()

		err := phase.Provision(ctx)
		duration := time.Since(phaseStart)

		switch {
		case err == nil:
			LogPhaseComplete(ctx.Observer, name, duration)
			p.record(ctx, PhaseResult{Phase: name, Status: PhaseCompleted, Duration: duration})
		case step.OnFailure == config.FailureWarn && !isFatal(err):
			LogPhaseWarned(ctx.Observer, name, err)
			p.record(ctx, PhaseResult{Phase: name, Status: PhaseWarned, Duration: duration, Err: err})
		default:
			LogPhaseFailed(ctx.Observer, name, err)
			p.record(ctx, PhaseResult{Phase: name, Status: PhaseFailed, Duration: duration, Err: err})
			return &PhaseError{Phase: name, Err: err}
		}
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) record(ctx *Context, result PhaseResult) {
	ctx.State.Results = append(ctx.State.Results, result)
	if ctx.Metrics != nil {
		ctx.Metrics.RecordPhase(result.Phase, result.Status, result.Duration)
	}
}

// stepConfig returns the phase settings; without configuration every phase
// is enabled and fatal.
func stepConfig(cfg *config.Config, name string) config.StepConfig {
	if cfg == nil {
		return config.StepConfig{OnFailure: config.FailureFatal}
	}
	return cfg.Step(name)
}

// RunPhases executes all provisioning phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	return NewPipeline(phases...).Run(ctx)
}
