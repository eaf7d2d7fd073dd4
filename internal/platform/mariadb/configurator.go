package mariadb

import (
	"context"
	"fmt"
)

// Settings describes the desired account and schema state.
type Settings struct {
	Account    Account
	Schema     string
	MockSchema string
	Timezone   string
}

// Validate rejects settings that cannot be rendered safely.
func (s Settings) Validate() error {
	if err := s.Account.Validate(); err != nil {
		return err
	}
	if err := ValidateIdentifier("schema", s.Schema); err != nil {
		return err
	}
	if err := ValidateIdentifier("mock schema", s.MockSchema); err != nil {
		return err
	}
	if s.Timezone == "" {
		return fmt.Errorf("time zone cannot be empty")
	}
	return nil
}

// Configurator applies Settings through an Admin, one checked step at a time.
type Configurator struct {
	admin    Admin
	settings Settings
}

// NewConfigurator validates settings and creates a configurator.
func NewConfigurator(admin Admin, settings Settings) (*Configurator, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &Configurator{admin: admin, settings: settings}, nil
}

// CreateUser creates or replaces the application account.
func (c *Configurator) CreateUser(ctx context.Context) error {
	return c.admin.Exec(ctx, CreateOrReplaceUser(c.settings.Account))
}

// RecreateSchema drops and creates the primary schema. Existing data is lost.
func (c *Configurator) RecreateSchema(ctx context.Context) error {
	if err := c.admin.Exec(ctx, DropDatabase(c.settings.Schema)); err != nil {
		return err
	}
	if err := c.admin.Exec(ctx, CreateDatabase(c.settings.Schema)); err != nil {
		return fmt.Errorf("schema %s was dropped but could not be created: %w", c.settings.Schema, err)
	}
	return nil
}

// GrantPrivileges grants the account full access to both schemas.
func (c *Configurator) GrantPrivileges(ctx context.Context) error {
	for _, schema := range []string{c.settings.Schema, c.settings.MockSchema} {
		if err := c.admin.Exec(ctx, GrantAll(schema, c.settings.Account)); err != nil {
			return fmt.Errorf("grant on %s: %w", schema, err)
		}
	}
	return nil
}

// SetTimezone sets the global time zone and reads it back.
func (c *Configurator) SetTimezone(ctx context.Context) error {
	if err := c.admin.Exec(ctx, SetGlobalTimezone(c.settings.Timezone)); err != nil {
		return err
	}
	got, err := c.admin.QueryValue(ctx, SelectGlobalTimezone)
	if err != nil {
		return fmt.Errorf("failed to read global time zone: %w", err)
	}
	if got != c.settings.Timezone {
		return fmt.Errorf("%w: want %q, server reports %q", ErrTimezoneMismatch, c.settings.Timezone, got)
	}
	return nil
}

// FlushPrivileges reloads the grant tables.
func (c *Configurator) FlushPrivileges(ctx context.Context) error {
	return c.admin.Exec(ctx, FlushPrivileges)
}
