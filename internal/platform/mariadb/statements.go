package mariadb

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidateIdentifier rejects names that would need quoting. Schema and user
// names are interpolated into statements, so only [A-Za-z0-9_] is accepted.
func ValidateIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s %q: only letters, digits and underscore are allowed", kind, name)
	}
	return nil
}

// QuoteString returns s as a single-quoted SQL string literal.
func QuoteString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\x00", `\0`, "\n", `\n`, "\r", `\r`, "\x1a", `\Z`)
	return "'" + r.Replace(s) + "'"
}

// Account identifies a database user.
type Account struct {
	User     string
	Host     string
	Password string
}

// Validate checks the parts of the account that end up unquoted.
func (a Account) Validate() error {
	if err := ValidateIdentifier("user", a.User); err != nil {
		return err
	}
	if a.Host == "" {
		return fmt.Errorf("account host cannot be empty")
	}
	return nil
}

// principal renders 'user'@'host'.
func (a Account) principal() string {
	return QuoteString(a.User) + "@" + QuoteString(a.Host)
}

// CreateOrReplaceUser creates the account, replacing an existing one and its password.
func CreateOrReplaceUser(a Account) string {
	return fmt.Sprintf("CREATE OR REPLACE USER %s IDENTIFIED BY %s", a.principal(), QuoteString(a.Password))
}

// DropDatabase drops schema if it exists.
func DropDatabase(schema string) string {
	return fmt.Sprintf("DROP DATABASE IF EXISTS %s", schema)
}

// CreateDatabase creates schema.
func CreateDatabase(schema string) string {
	return fmt.Sprintf("CREATE DATABASE %s", schema)
}

// GrantAll grants every privilege on schema to the account, including GRANT OPTION.
func GrantAll(schema string, a Account) string {
	return fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO %s WITH GRANT OPTION", schema, a.principal())
}

// SetGlobalTimezone sets the server-wide time zone.
func SetGlobalTimezone(tz string) string {
	return fmt.Sprintf("SET GLOBAL time_zone = %s", QuoteString(tz))
}

// SelectGlobalTimezone reads the server-wide time zone back.
const SelectGlobalTimezone = "SELECT @@global.time_zone"

// FlushPrivileges reloads the grant tables.
const FlushPrivileges = "FLUSH PRIVILEGES"
