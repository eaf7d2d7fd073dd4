// Package rabbitmq configures the RabbitMQ broker through rabbitmqctl.
package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/util/retry"
)

// Ctl runs rabbitmqctl as root on a host.
type Ctl struct {
	host host.Host
}

// NewCtl creates a rabbitmqctl runner for h.
func NewCtl(h host.Host) *Ctl {
	return &Ctl{host: h}
}

func (c *Ctl) run(ctx context.Context, args ...string) (host.Result, error) {
	return c.host.Run(ctx, host.Command{
		Name: "rabbitmqctl",
		Args: args,
		Sudo: true,
	})
}

// runWithPassword omits the password argument; rabbitmqctl then reads it from
// stdin, which keeps it out of the process list.
func (c *Ctl) runWithPassword(ctx context.Context, password string, args ...string) (host.Result, error) {
	return c.host.Run(ctx, host.Command{
		Name:  "rabbitmqctl",
		Args:  args,
		Stdin: strings.NewReader(password + "\n"),
		Sudo:  true,
	})
}

// WaitOptions tunes WaitReady.
type WaitOptions struct {
	Timeout      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	// Notify is called after each failed attempt.
	Notify func(attempt int, err error, next time.Duration)
}

// WaitReady blocks until the node has booted, retrying "await_startup" with
// backoff. A freshly started node refuses CLI connections for a while.
func (c *Ctl) WaitReady(ctx context.Context, opts WaitOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	retryOpts := []retry.Option{retry.WithMaxDelay(15 * time.Second)}
	if opts.MaxAttempts > 0 {
		retryOpts = append(retryOpts, retry.WithMaxRetries(opts.MaxAttempts))
	}
	if opts.InitialDelay > 0 {
		retryOpts = append(retryOpts, retry.WithInitialDelay(opts.InitialDelay))
	}
	if opts.Notify != nil {
		retryOpts = append(retryOpts, retry.WithNotify(opts.Notify))
	}

	err := retry.WithExponentialBackoff(ctx, func() error {
		_, err := c.run(ctx, "await_startup")
		var exitErr *host.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			// rabbitmqctl could not be started at all
			return retry.Fatal(err)
		}
		return err
	}, retryOpts...)
	if err != nil {
		return fmt.Errorf("broker did not become ready: %w", err)
	}
	return nil
}

// ListUsers returns the names of all broker users.
func (c *Ctl) ListUsers(ctx context.Context) ([]string, error) {
	res, err := c.run(ctx, "--silent", "list_users")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return parseUsers(res.Stdout), nil
}

// parseUsers reads "name<TAB>[tags]" lines, skipping a header if present.
func parseUsers(out string) []string {
	var users []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, _, _ := strings.Cut(line, "\t")
		name = strings.TrimSpace(name)
		if name == "user" || strings.HasPrefix(name, "Listing users") {
			continue
		}
		users = append(users, name)
	}
	return users
}

// UserExists reports whether user is known to the broker.
func (c *Ctl) UserExists(ctx context.Context, user string) (bool, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u == user {
			return true, nil
		}
	}
	return false, nil
}

// AddUser creates user with password.
func (c *Ctl) AddUser(ctx context.Context, user, password string) error {
	if _, err := c.runWithPassword(ctx, password, "add_user", user); err != nil {
		return fmt.Errorf("failed to add user %s: %w", user, err)
	}
	return nil
}

// ChangePassword resets the password of an existing user.
func (c *Ctl) ChangePassword(ctx context.Context, user, password string) error {
	if _, err := c.runWithPassword(ctx, password, "change_password", user); err != nil {
		return fmt.Errorf("failed to change password of %s: %w", user, err)
	}
	return nil
}

// SetUserTags replaces the tags of user.
func (c *Ctl) SetUserTags(ctx context.Context, user string, tags ...string) error {
	args := append([]string{"set_user_tags", user}, tags...)
	if _, err := c.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to set tags of %s: %w", user, err)
	}
	return nil
}

// GrantAll gives user configure, write and read permission on every
// resource of vhost.
func (c *Ctl) GrantAll(ctx context.Context, vhost, user string) error {
	if _, err := c.run(ctx, "set_permissions", "-p", vhost, user, ".*", ".*", ".*"); err != nil {
		return fmt.Errorf("failed to set permissions of %s on %s: %w", user, vhost, err)
	}
	return nil
}
