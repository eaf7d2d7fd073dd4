package testing

import (
	"context"
	"testing"
	"time"

	"github.com/jftf/jftf-setup/internal/config"
	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/platform/mariadb"
	"github.com/jftf/jftf-setup/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Deps are the doubles behind a provisioning context built for tests.
type Deps struct {
	Observer *MockObserver
	Services *MockServices
	Admin    *MockAdmin
}

// NewProvisioningContext wires a provisioning context around h with
// recording doubles and fast retry settings.
func NewProvisioningContext(t *testing.T, cfg *config.Config, h host.Host) (*provisioning.Context, *Deps) {
	t.Helper()
	deps := &Deps{
		Observer: NewMockObserver(),
		Services: NewMockServices(),
		Admin:    NewMockAdmin(cfg.Database.Timezone),
	}
	factory := func(context.Context) (mariadb.Admin, error) { return deps.Admin, nil }

	pctx := provisioning.NewContext(TestContext(t), cfg, h, deps.Services, factory, deps.Observer)
	pctx.Timeouts = &config.Timeouts{
		Command:           time.Minute,
		BrokerWait:        10 * time.Second,
		SSHDial:           time.Second,
		RetryMaxAttempts:  3,
		RetryInitialDelay: time.Millisecond,
	}
	return pctx, deps
}
