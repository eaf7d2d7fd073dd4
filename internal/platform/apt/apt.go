package apt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jftf/jftf-setup/internal/host"
)

// installFlags keep apt-get from asking questions. Existing configuration
// files are kept when a package update ships a new one.
var installFlags = []string{
	"--option=Dpkg::Options::=--force-confold",
	"--assume-yes",
	"--quiet",
	"install",
}

// Outcome describes what EnsureInstalled did for a package.
type Outcome int

const (
	// AlreadyInstalled means dpkg-query found the package and apt-get did not run.
	AlreadyInstalled Outcome = iota
	// Installed means apt-get ran and succeeded.
	Installed
)

// Installer queries and installs packages through a host.
type Installer struct {
	host host.Host
}

// NewInstaller creates an installer running commands on h.
func NewInstaller(h host.Host) *Installer {
	return &Installer{host: h}
}

// IsInstalled reports whether dpkg considers name installed.
// An unknown package is not an error; it is simply not installed.
func (i *Installer) IsInstalled(ctx context.Context, name string) (bool, error) {
	res, err := i.host.Run(ctx, host.Command{
		Name: "dpkg-query",
		Args: []string{"-W", "-f=${Status}", name},
	})
	if err != nil {
		var exitErr *host.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, fmt.Errorf("failed to query package %s: %w", name, err)
	}
	return statusInstalled(res.Stdout), nil
}

// statusInstalled interprets a dpkg Status field such as "install ok installed".
func statusInstalled(status string) bool {
	fields := strings.Fields(status)
	return len(fields) == 3 && fields[2] == "installed"
}

// Install runs apt-get install for name unconditionally.
func (i *Installer) Install(ctx context.Context, name string) error {
	args := make([]string, 0, len(installFlags)+1)
	args = append(args, installFlags...)
	args = append(args, name)

	_, err := i.host.Run(ctx, host.Command{
		Name: "apt-get",
		Args: args,
		Env:  []string{"DEBIAN_FRONTEND=noninteractive"},
		Sudo: true,
	})
	if err != nil {
		return fmt.Errorf("failed to install package %s: %w", name, err)
	}
	return nil
}

// EnsureInstalled installs name unless it is already installed.
func (i *Installer) EnsureInstalled(ctx context.Context, name string) (Outcome, error) {
	installed, err := i.IsInstalled(ctx, name)
	if err != nil {
		return 0, err
	}
	if installed {
		return AlreadyInstalled, nil
	}
	if err := i.Install(ctx, name); err != nil {
		return 0, err
	}
	return Installed, nil
}
