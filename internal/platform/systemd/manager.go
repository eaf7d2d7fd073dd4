package systemd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-systemd/v22/util"

	"github.com/jftf/jftf-setup/internal/host"
)

// Manager controls system services.
type Manager interface {
	// Enable makes the unit start at boot.
	Enable(ctx context.Context, unit string) error
	// Start starts the unit.
	Start(ctx context.Context, unit string) error
	// Restart restarts the unit, starting it when stopped.
	Restart(ctx context.Context, unit string) error
	// Status returns the unit's active state, e.g. "active" or "failed".
	Status(ctx context.Context, unit string) (string, error)
	// Close releases the connection, if any.
	Close() error
}

// IsRunning reports whether systemd is the init system of this machine.
func IsRunning() bool {
	return util.IsRunningSystemd()
}

// UnitName adds the ".service" suffix to bare service names.
func UnitName(name string) string {
	if strings.Contains(name, ".") {
		return name
	}
	return name + ".service"
}

// Systemctl manages services with "sudo systemctl" on a host.
type Systemctl struct {
	host host.Host
}

// NewSystemctl creates a systemctl manager for h.
func NewSystemctl(h host.Host) *Systemctl {
	return &Systemctl{host: h}
}

func (s *Systemctl) run(ctx context.Context, verb, unit string) error {
	_, err := s.host.Run(ctx, host.Command{
		Name: "systemctl",
		Args: []string{verb, UnitName(unit)},
		Sudo: true,
	})
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", verb, unit, err)
	}
	return nil
}

// Enable implements Manager.
func (s *Systemctl) Enable(ctx context.Context, unit string) error {
	return s.run(ctx, "enable", unit)
}

// Start implements Manager.
func (s *Systemctl) Start(ctx context.Context, unit string) error {
	return s.run(ctx, "start", unit)
}

// Restart implements Manager.
func (s *Systemctl) Restart(ctx context.Context, unit string) error {
	return s.run(ctx, "restart", unit)
}

// Status implements Manager. An inactive unit is a state, not an error.
func (s *Systemctl) Status(ctx context.Context, unit string) (string, error) {
	res, err := s.host.Run(ctx, host.Command{
		Name: "systemctl",
		Args: []string{"is-active", UnitName(unit)},
	})
	state := strings.TrimSpace(res.Stdout)
	if err != nil {
		var exitErr *host.ExitError
		if errors.As(err, &exitErr) && state != "" {
			return state, nil
		}
		return "", fmt.Errorf("failed to query %s: %w", unit, err)
	}
	return state, nil
}

// Close implements Manager.
func (s *Systemctl) Close() error { return nil }
