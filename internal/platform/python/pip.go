package python

import (
	"context"
	"fmt"

	"github.com/jftf/jftf-setup/internal/host"
)

// Pip runs pip through a virtual environment's interpreter.
type Pip struct {
	host host.Host
	venv Venv
}

// NewPip creates a pip runner for v.
func NewPip(h host.Host, v Venv) *Pip {
	return &Pip{host: h, venv: v}
}

// InstallRequirements installs every dependency listed in manifest.
// A missing manifest fails before pip runs.
func (p *Pip) InstallRequirements(ctx context.Context, manifest string) error {
	ok, err := p.host.Exists(ctx, manifest)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", manifest, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrManifestMissing, manifest)
	}

	if _, err := p.run(ctx, "install", "-r", manifest); err != nil {
		return fmt.Errorf("failed to install requirements from %s: %w", manifest, err)
	}
	return nil
}

// List returns the output of "pip list".
func (p *Pip) List(ctx context.Context) (string, error) {
	res, err := p.run(ctx, "list")
	if err != nil {
		return "", fmt.Errorf("failed to list installed packages: %w", err)
	}
	return res.Stdout, nil
}

func (p *Pip) run(ctx context.Context, args ...string) (host.Result, error) {
	return p.host.Run(ctx, host.Command{
		Name: p.venv.Python(),
		Args: append([]string{"-m", "pip"}, args...),
	})
}
