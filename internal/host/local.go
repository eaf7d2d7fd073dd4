package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"
)

// Local runs commands on the current machine.
type Local struct {
	// CommandTimeout bounds each Run; zero means no bound beyond ctx.
	CommandTimeout time.Duration
}

// NewLocal creates a local host.
func NewLocal(commandTimeout time.Duration) *Local {
	return &Local{CommandTimeout: commandTimeout}
}

// Name implements Host.
func (l *Local) Name() string { return "localhost" }

// Run implements Host.
func (l *Local) Run(ctx context.Context, cmd Command) (Result, error) {
	if l.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.CommandTimeout)
		defer cancel()
	}

	argv := cmd.Argv()
	// #nosec G204 - argv is built from configuration, not user input
	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Dir = cmd.Dir
	if !cmd.Sudo && len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdin = cmd.Stdin

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, exitError(cmd, res)
	default:
		return res, fmt.Errorf("failed to run %s: %w", cmd, err)
	}
}

// Exists implements Host.
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDir implements Host.
func (l *Local) IsDir(_ context.Context, path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ReadFile implements Host.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	// #nosec G304
	return os.ReadFile(path)
}

// LookPath implements Host.
func (l *Local) LookPath(_ context.Context, name string) (string, error) {
	return exec.LookPath(name)
}

// EffectiveUID implements Host.
func (l *Local) EffectiveUID(_ context.Context) (int, error) {
	return os.Geteuid(), nil
}

// Close implements Host.
func (l *Local) Close() error { return nil }
