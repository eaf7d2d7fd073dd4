package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// DBusAPI is the subset of *dbus.Conn used by DBus.
type DBusAPI interface {
	EnableUnitFilesContext(ctx context.Context, files []string, runtime bool, force bool) (bool, []dbus.EnableUnitFileChange, error)
	ReloadContext(ctx context.Context) error
	StartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	RestartUnitContext(ctx context.Context, name string, mode string, ch chan<- string) (int, error)
	GetUnitPropertyContext(ctx context.Context, unit string, propertyName string) (*dbus.Property, error)
	Close()
}

// NewDBusAPI connects to the system bus. Replaced in tests.
var NewDBusAPI = func(ctx context.Context) (DBusAPI, error) {
	return dbus.NewWithContext(ctx)
}

// DBus manages services through systemd's D-Bus API.
type DBus struct {
	conn DBusAPI
}

// NewDBus connects to systemd.
func NewDBus(ctx context.Context) (*DBus, error) {
	conn, err := NewDBusAPI(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to systemd over dbus: %w", err)
	}
	return &DBus{conn: conn}, nil
}

// Enable implements Manager.
func (d *DBus) Enable(ctx context.Context, unit string) error {
	if _, _, err := d.conn.EnableUnitFilesContext(ctx, []string{UnitName(unit)}, false, true); err != nil {
		return fmt.Errorf("failed to enable %s: %w", unit, err)
	}
	if err := d.conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("failed to reload systemd after enabling %s: %w", unit, err)
	}
	return nil
}

// Start implements Manager.
func (d *DBus) Start(ctx context.Context, unit string) error {
	statusCh := make(chan string, 1)
	if _, err := d.conn.StartUnitContext(ctx, UnitName(unit), "replace", statusCh); err != nil {
		return fmt.Errorf("dbus start request for %s failed: %w", unit, err)
	}
	return wait(ctx, "start", unit, statusCh)
}

// Restart implements Manager.
func (d *DBus) Restart(ctx context.Context, unit string) error {
	statusCh := make(chan string, 1)
	if _, err := d.conn.RestartUnitContext(ctx, UnitName(unit), "replace", statusCh); err != nil {
		return fmt.Errorf("dbus restart request for %s failed: %w", unit, err)
	}
	return wait(ctx, "restart", unit, statusCh)
}

// Status implements Manager.
func (d *DBus) Status(ctx context.Context, unit string) (string, error) {
	prop, err := d.conn.GetUnitPropertyContext(ctx, UnitName(unit), "ActiveState")
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", unit, err)
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected ActiveState value %s for %s", prop.Value.String(), unit)
	}
	return state, nil
}

// Close implements Manager.
func (d *DBus) Close() error {
	d.conn.Close()
	return nil
}

// wait blocks until systemd reports the job result. Only "done" is success;
// see the StartUnit documentation for the other values.
func wait(ctx context.Context, op, unit string, statusCh <-chan string) error {
	select {
	case status := <-statusCh:
		if status != "done" {
			return fmt.Errorf("failed to %s %s (job result %q)", op, unit, status)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %s of %s: %w", op, unit, ctx.Err())
	}
}
