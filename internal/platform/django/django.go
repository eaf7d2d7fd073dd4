// Package django runs the project's manage.py commands inside the virtual
// environment.
package django

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/jftf/jftf-setup/internal/host"
)

var (
	// ErrManageMissing is returned when manage.py does not exist.
	ErrManageMissing = errors.New("manage.py not found")

	// ErrSuperuserExists is returned when createsuperuser refuses an existing username.
	ErrSuperuserExists = errors.New("superuser already exists")
)

// usernameTaken is the message createsuperuser prints for a duplicate username.
const usernameTaken = "username is already taken"

// Superuser describes the administrative account created by createsuperuser.
type Superuser struct {
	Username string
	Password string
	Email    string
}

// Manage runs manage.py subcommands with a given interpreter.
type Manage struct {
	host   host.Host
	python string
	script string
}

// NewManage creates a runner for script executed by python. Commands run in
// the directory holding script.
func NewManage(h host.Host, python, script string) *Manage {
	return &Manage{host: h, python: python, script: script}
}

// Check verifies manage.py exists.
func (m *Manage) Check(ctx context.Context) error {
	ok, err := m.host.Exists(ctx, m.script)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", m.script, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrManageMissing, m.script)
	}
	return nil
}

// Migrate applies all migrations without prompting.
func (m *Manage) Migrate(ctx context.Context) (host.Result, error) {
	if err := m.Check(ctx); err != nil {
		return host.Result{}, err
	}
	res, err := m.run(ctx, nil, "migrate", "--noinput")
	if err != nil {
		return res, fmt.Errorf("migrate failed: %w", err)
	}
	return res, nil
}

// CreateSuperuser creates the administrative account. Credentials are passed
// only in this invocation's environment.
func (m *Manage) CreateSuperuser(ctx context.Context, su Superuser) (host.Result, error) {
	if err := m.Check(ctx); err != nil {
		return host.Result{}, err
	}
	env := []string{
		"DJANGO_SUPERUSER_USERNAME=" + su.Username,
		"DJANGO_SUPERUSER_PASSWORD=" + su.Password,
	}
	res, err := m.run(ctx, env, "createsuperuser", "--noinput", "--email", su.Email)
	if err != nil {
		var exitErr *host.ExitError
		if errors.As(err, &exitErr) && strings.Contains(exitErr.Output, usernameTaken) {
			return res, fmt.Errorf("%w: %s", ErrSuperuserExists, su.Username)
		}
		return res, fmt.Errorf("createsuperuser failed: %w", err)
	}
	return res, nil
}

func (m *Manage) run(ctx context.Context, env []string, args ...string) (host.Result, error) {
	return m.host.Run(ctx, host.Command{
		Name: m.python,
		Args: append([]string{path.Base(m.script)}, args...),
		Env:  env,
		Dir:  path.Dir(m.script),
	})
}
