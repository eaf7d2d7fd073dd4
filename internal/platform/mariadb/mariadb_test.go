package mariadb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jftf/jftf-setup/internal/host"
	"github.com/jftf/jftf-setup/internal/host/hosttest"
)

func TestValidateIdentifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "plain", value: "jftf_cmdb"},
		{name: "digits", value: "test_jftf_cmdb2"},
		{name: "empty", value: "", wantErr: true},
		{name: "space", value: "jftf cmdb", wantErr: true},
		{name: "injection", value: "x; DROP DATABASE mysql", wantErr: true},
		{name: "backtick", value: "jftf`cmdb", wantErr: true},
		{name: "dash", value: "jftf-cmdb", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateIdentifier("schema", tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `'jftf_dev'`, QuoteString("jftf_dev"))
	assert.Equal(t, `'it\'s'`, QuoteString("it's"))
	assert.Equal(t, `'a\\b'`, QuoteString(`a\b`))
	assert.Equal(t, `'line\nbreak'`, QuoteString("line\nbreak"))
}

func TestStatements(t *testing.T) {
	t.Parallel()

	a := Account{User: "jftf_dev", Host: "localhost", Password: "jftf_dev"}

	assert.Equal(t, "CREATE OR REPLACE USER 'jftf_dev'@'localhost' IDENTIFIED BY 'jftf_dev'", CreateOrReplaceUser(a))
	assert.Equal(t, "DROP DATABASE IF EXISTS jftf_cmdb", DropDatabase("jftf_cmdb"))
	assert.Equal(t, "CREATE DATABASE jftf_cmdb", CreateDatabase("jftf_cmdb"))
	assert.Equal(t, "GRANT ALL PRIVILEGES ON test_jftf_cmdb.* TO 'jftf_dev'@'localhost' WITH GRANT OPTION", GrantAll("test_jftf_cmdb", a))
	assert.Equal(t, "SET GLOBAL time_zone = '+00:00'", SetGlobalTimezone("+00:00"))
}

// fakeAdmin records statements and fails on request.
type fakeAdmin struct {
	stmts    []string
	failOn   map[string]error
	timezone string
}

func (f *fakeAdmin) Exec(_ context.Context, stmt string) error {
	f.stmts = append(f.stmts, stmt)
	return f.failOn[stmt]
}

func (f *fakeAdmin) QueryValue(_ context.Context, query string) (string, error) {
	f.stmts = append(f.stmts, query)
	if err := f.failOn[query]; err != nil {
		return "", err
	}
	return f.timezone, nil
}

func (f *fakeAdmin) Close() error { return nil }

func testSettings() Settings {
	return Settings{
		Account:    Account{User: "jftf_dev", Host: "localhost", Password: "jftf_dev"},
		Schema:     "jftf_cmdb",
		MockSchema: "test_jftf_cmdb",
		Timezone:   "+00:00",
	}
}

func TestConfigurator_AllSteps(t *testing.T) {
	t.Parallel()

	admin := &fakeAdmin{timezone: "+00:00"}
	c, err := NewConfigurator(admin, testSettings())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.CreateUser(ctx))
	require.NoError(t, c.RecreateSchema(ctx))
	require.NoError(t, c.GrantPrivileges(ctx))
	require.NoError(t, c.SetTimezone(ctx))
	require.NoError(t, c.FlushPrivileges(ctx))

	assert.Equal(t, []string{
		"CREATE OR REPLACE USER 'jftf_dev'@'localhost' IDENTIFIED BY 'jftf_dev'",
		"DROP DATABASE IF EXISTS jftf_cmdb",
		"CREATE DATABASE jftf_cmdb",
		"GRANT ALL PRIVILEGES ON jftf_cmdb.* TO 'jftf_dev'@'localhost' WITH GRANT OPTION",
		"GRANT ALL PRIVILEGES ON test_jftf_cmdb.* TO 'jftf_dev'@'localhost' WITH GRANT OPTION",
		"SET GLOBAL time_zone = '+00:00'",
		"SELECT @@global.time_zone",
		"FLUSH PRIVILEGES",
	}, admin.stmts)
}

func TestConfigurator_TimezoneMismatch(t *testing.T) {
	t.Parallel()

	admin := &fakeAdmin{timezone: "SYSTEM"}
	c, err := NewConfigurator(admin, testSettings())
	require.NoError(t, err)

	err = c.SetTimezone(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimezoneMismatch))
	assert.Contains(t, err.Error(), `"SYSTEM"`)
}

func TestConfigurator_CreateAfterDropFails(t *testing.T) {
	t.Parallel()

	admin := &fakeAdmin{failOn: map[string]error{"CREATE DATABASE jftf_cmdb": errors.New("disk full")}}
	c, err := NewConfigurator(admin, testSettings())
	require.NoError(t, err)

	err = c.RecreateSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was dropped")
}

func TestNewConfigurator_RejectsIdentifiers(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.Schema = "jftf_cmdb; DROP DATABASE mysql"
	admin := &fakeAdmin{}

	_, err := NewConfigurator(admin, s)
	require.Error(t, err)
	assert.Empty(t, admin.stmts, "nothing runs when validation fails")

	s = testSettings()
	s.Account.User = "jftf dev"
	_, err = NewConfigurator(admin, s)
	assert.Error(t, err)
}

func TestCLIAdmin(t *testing.T) {
	t.Parallel()

	fake := hosttest.New()
	fake.On(hosttest.Prefix("sudo", "mysql"), host.Result{Stdout: "+00:00\n"})

	admin := NewCLIAdmin(fake)
	ctx := context.Background()

	require.NoError(t, admin.Exec(ctx, CreateOrReplaceUser(Account{User: "jftf_dev", Host: "localhost", Password: "s3cret"})))
	tz, err := admin.QueryValue(ctx, SelectGlobalTimezone)
	require.NoError(t, err)
	assert.Equal(t, "+00:00", tz)
	require.NoError(t, admin.Close())

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sudo mysql --batch --skip-column-names", calls[0].Argv())
	assert.NotContains(t, calls[0].Argv(), "s3cret", "password must not be in argv")
	assert.Equal(t, "CREATE OR REPLACE USER 'jftf_dev'@'localhost' IDENTIFIED BY 's3cret';\n", calls[0].Stdin)
	assert.Equal(t, "SELECT @@global.time_zone;\n", calls[1].Stdin)
}

func TestCLIAdmin_Failure(t *testing.T) {
	t.Parallel()

	fake := hosttest.New()
	fake.Fail(hosttest.Prefix("sudo", "mysql"), 1, "ERROR 1045 (28000): Access denied")

	err := NewCLIAdmin(fake).Exec(context.Background(), FlushPrivileges)
	require.Error(t, err)
	var exitErr *host.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Contains(t, exitErr.Output, "Access denied")
}

func TestParseDSN(t *testing.T) {
	t.Parallel()

	dsn, err := ParseDSN("root:pw@tcp(127.0.0.1:3306)/?multiStatements=true")
	require.NoError(t, err)
	assert.NotContains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "tcp(127.0.0.1:3306)")

	_, err = ParseDSN("root:pw@tcp(127.0.0.1:3306")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database admin DSN")
}
