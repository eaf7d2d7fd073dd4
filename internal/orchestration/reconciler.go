package orchestration

import (
	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/provisioning"
	"github.com/jftf/jftf-setup/internal/provisioning/broker"
	"github.com/jftf/jftf-setup/internal/provisioning/database"
	"github.com/jftf/jftf-setup/internal/provisioning/logging"
	"github.com/jftf/jftf-setup/internal/provisioning/pyenv"
	"github.com/jftf/jftf-setup/internal/provisioning/system"
	"github.com/jftf/jftf-setup/internal/provisioning/webapp"
)

// Phases returns every provisioning phase in execution order.
func Phases() []provisioning.Phase {
	return []provisioning.Phase{
		system.NewProvisioner(),
		pyenv.NewVenvProvisioner(),
		pyenv.NewPipProvisioner(),
		database.NewProvisioner(),
		webapp.NewMigrationsProvisioner(),
		database.NewLegacyViewsProvisioner(),
		webapp.NewSuperuserProvisioner(),
		logging.NewProvisioner(),
		broker.NewProvisioner(),
	}
}

// PlannedPhase describes how a phase will be treated by a run.
type PlannedPhase struct {
	Name      string
	Enabled   bool
	OnFailure config.FailurePolicy
}

// Plan returns the phases cfg would run, without touching any host.
func Plan(cfg *config.Config) []PlannedPhase {
	phases := Phases()
	plan := make([]PlannedPhase, 0, len(phases))
	for _, phase := range phases {
		step := cfg.Step(phase.Name())
		plan = append(plan, PlannedPhase{
			Name:      phase.Name(),
			Enabled:   step.Enabled == nil || *step.Enabled,
			OnFailure: step.OnFailure,
		})
	}
	return plan
}

// Reconciler orchestrates the provisioning workflow.
type Reconciler struct {
	phases []provisioning.Phase
}

// NewReconciler creates a reconciler running the standard phases.
func NewReconciler() *Reconciler {
	return &Reconciler{phases: Phases()}
}

// Reconcile runs all phases against the host in pctx. When a metrics
// textfile is configured it is written even if a phase failed; a write
// failure is logged and does not change the outcome.
func (r *Reconciler) Reconcile(pctx *provisioning.Context) error {
	err := provisioning.NewPipeline(r.phases...).Run(pctx)

	if pctx.Metrics != nil && pctx.Config.Metrics.Textfile != "" {
		if werr := pctx.Metrics.WriteTextfile(pctx.Config.Metrics.Textfile); werr != nil {
			pctx.Logger.Printf("Warning: %v", werr)
		}
	}
	return err
}
