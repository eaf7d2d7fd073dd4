package provisioning

import (
	"context"

	"github.com/jftf/jftf-setup/internal/platform/mariadb"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the phase name, also used as the key of its steps override.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Logger is the printf-style logging surface used by phases.
type Logger interface {
	Printf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}

// DatabaseAdminFactory opens the administrative database connection.
// It is called by the database phase, after the server was installed.
type DatabaseAdminFactory func(ctx context.Context) (mariadb.Admin, error)
