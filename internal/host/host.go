package host

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Command describes a single external invocation.
type Command struct {
	Name string
	Args []string
	// Env holds KEY=VALUE pairs added to this invocation only.
	Env []string
	// Dir is the working directory; empty keeps the host default.
	Dir string
	// Stdin is fed to the process when set.
	Stdin io.Reader
	// Sudo runs the command through sudo. Env is passed as sudo arguments
	// so it survives sudo's environment reset.
	Sudo bool
	// Secrets lists argument values masked when the command is logged.
	Secrets []string
}

// Argv returns the full argument vector including the sudo prefix.
func (c Command) Argv() []string {
	argv := make([]string, 0, len(c.Args)+len(c.Env)+2)
	if c.Sudo {
		argv = append(argv, "sudo")
		argv = append(argv, c.Env...)
	}
	argv = append(argv, c.Name)
	return append(argv, c.Args...)
}

// String renders the command for logs with credentials masked.
func (c Command) String() string {
	return Render(c.redacted())
}

// redacted masks Secrets and values of environment entries that look like secrets.
func (c Command) redacted() Command {
	if len(c.Secrets) > 0 {
		args := make([]string, len(c.Args))
		for i, arg := range c.Args {
			if slices.Contains(c.Secrets, arg) {
				arg = "***"
			}
			args[i] = arg
		}
		c.Args = args
	}
	if len(c.Env) > 0 {
		env := make([]string, len(c.Env))
		for i, kv := range c.Env {
			key, _, found := strings.Cut(kv, "=")
			if found && strings.Contains(strings.ToUpper(key), "PASSWORD") {
				kv = key + "=***"
			}
			env[i] = kv
		}
		c.Env = env
	}
	return c
}

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stdout and stderr joined for diagnostics.
func (r Result) Output() string {
	out := strings.TrimSpace(r.Stdout)
	if errOut := strings.TrimSpace(r.Stderr); errOut != "" {
		if out != "" {
			out += "\n"
		}
		out += errOut
	}
	return out
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// Host runs commands and answers file checks on the provisioned machine.
type Host interface {
	// Name identifies the host in logs.
	Name() string

	// Run executes cmd. A non-zero exit returns the Result together with an *ExitError.
	Run(ctx context.Context, cmd Command) (Result, error)

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// IsDir reports whether path exists and is a directory.
	IsDir(ctx context.Context, path string) (bool, error)

	// ReadFile returns the content of path.
	ReadFile(ctx context.Context, path string) ([]byte, error)

	// LookPath resolves an executable name on the host's PATH.
	LookPath(ctx context.Context, name string) (string, error)

	// EffectiveUID returns the UID commands run as.
	EffectiveUID(ctx context.Context) (int, error)

	// Close releases connections held by the host.
	Close() error
}

// WritePrivileged replaces a root-owned file through "sudo tee".
func WritePrivileged(ctx context.Context, h Host, path string, data []byte) error {
	_, err := h.Run(ctx, Command{
		Name:  "tee",
		Args:  []string{path},
		Stdin: bytes.NewReader(data),
		Sudo:  true,
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// exitError builds the error returned for a non-zero exit.
func exitError(cmd Command, res Result) error {
	return &ExitError{Command: cmd.String(), Code: res.ExitCode, Output: res.Output()}
}

// parseUID parses "id -u" output.
func parseUID(out string) (int, error) {
	uid, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("unexpected id -u output %q: %w", out, err)
	}
	return uid, nil
}
