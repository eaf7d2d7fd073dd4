package python

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/jftf/jftf-setup/internal/host"
)

var (
	// ErrActivation is returned when an existing directory is not a usable virtual environment.
	ErrActivation = errors.New("virtual environment activation failed")

	// ErrManifestMissing is returned when the dependency manifest does not exist.
	ErrManifestMissing = errors.New("dependency manifest not found")
)

// Venv is a virtual environment directory on the target host.
type Venv struct {
	Dir string
}

// BinDir returns the directory holding the environment's executables.
func (v Venv) BinDir() string { return path.Join(v.Dir, "bin") }

// Python returns the environment's interpreter.
func (v Venv) Python() string { return path.Join(v.BinDir(), "python") }

// Env returns the variables an activated shell would have, given the
// host's PATH before activation.
func (v Venv) Env(basePath string) []string {
	p := v.BinDir()
	if basePath != "" {
		p += ":" + basePath
	}
	return []string{"VIRTUAL_ENV=" + v.Dir, "PATH=" + p}
}

// Manager creates and activates virtual environments.
type Manager struct {
	host        host.Host
	interpreter string
}

// NewManager creates a manager using interpreter (python3 when empty) to
// create environments.
func NewManager(h host.Host, interpreter string) *Manager {
	if interpreter == "" {
		interpreter = "python3"
	}
	return &Manager{host: h, interpreter: interpreter}
}

// Exists reports whether the environment directory is present.
func (m *Manager) Exists(ctx context.Context, v Venv) (bool, error) {
	return m.host.IsDir(ctx, v.Dir)
}

// Create runs "python3 -m venv <dir>".
func (m *Manager) Create(ctx context.Context, v Venv) error {
	_, err := m.host.Run(ctx, host.Command{
		Name: m.interpreter,
		Args: []string{"-m", "venv", v.Dir},
	})
	if err != nil {
		return fmt.Errorf("failed to create virtual environment %s: %w", v.Dir, err)
	}
	return nil
}

// Activate verifies the environment is usable and returns the environment
// variables later commands need.
func (m *Manager) Activate(ctx context.Context, v Venv) ([]string, error) {
	for _, p := range []string{path.Join(v.BinDir(), "activate"), v.Python()} {
		ok, err := m.host.Exists(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s: %w", p, err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s is missing", ErrActivation, p)
		}
	}

	res, err := m.host.Run(ctx, host.Command{Name: "printenv", Args: []string{"PATH"}})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read PATH: %w", ErrActivation, err)
	}
	return v.Env(trimNewline(res.Stdout)), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
