package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/jftf/jftf-setup/internal/host"
)

// ErrTimezoneMismatch is returned when the server reports a different global
// time zone than the one just set.
var ErrTimezoneMismatch = errors.New("global time zone mismatch")

// Admin executes administrative statements.
type Admin interface {
	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, stmt string) error

	// QueryValue runs a query returning a single value.
	QueryValue(ctx context.Context, query string) (string, error)

	// Close releases the connection, if any.
	Close() error
}

// CLIAdmin runs statements with the mysql client as root on the target host.
// Statements are written to stdin so passwords never appear in argv.
type CLIAdmin struct {
	host host.Host
}

// NewCLIAdmin creates an admin using "sudo mysql" on h.
func NewCLIAdmin(h host.Host) *CLIAdmin {
	return &CLIAdmin{host: h}
}

func (a *CLIAdmin) run(ctx context.Context, stmt string) (host.Result, error) {
	return a.host.Run(ctx, host.Command{
		Name:  "mysql",
		Args:  []string{"--batch", "--skip-column-names"},
		Stdin: strings.NewReader(stmt + ";\n"),
		Sudo:  true,
	})
}

// Exec implements Admin.
func (a *CLIAdmin) Exec(ctx context.Context, stmt string) error {
	_, err := a.run(ctx, stmt)
	return err
}

// QueryValue implements Admin.
func (a *CLIAdmin) QueryValue(ctx context.Context, query string) (string, error) {
	res, err := a.run(ctx, query)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Close implements Admin.
func (a *CLIAdmin) Close() error { return nil }

// SQLAdmin runs statements over a driver connection.
type SQLAdmin struct {
	db *sql.DB
}

// ParseDSN validates an administrative DSN and returns it normalized.
// Multi statements stay disabled; every statement is sent and checked alone.
func ParseDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid database admin DSN: %w", err)
	}
	cfg.MultiStatements = false
	return cfg.FormatDSN(), nil
}

// NewSQLAdmin opens and pings a connection using dsn.
func NewSQLAdmin(ctx context.Context, dsn string) (*SQLAdmin, error) {
	normalized, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB server: %w", err)
	}
	db.SetMaxOpenConns(1)
	return &SQLAdmin{db: db}, nil
}

// Exec implements Admin.
func (a *SQLAdmin) Exec(ctx context.Context, stmt string) error {
	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return describeDriverError(err)
	}
	return nil
}

// QueryValue implements Admin.
func (a *SQLAdmin) QueryValue(ctx context.Context, query string) (string, error) {
	var value sql.NullString
	if err := a.db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return "", describeDriverError(err)
	}
	return value.String, nil
}

// Close implements Admin.
func (a *SQLAdmin) Close() error {
	return a.db.Close()
}

// describeDriverError adds the server error number when available.
func describeDriverError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Errorf("server error %d: %w", myErr.Number, err)
	}
	return err
}
