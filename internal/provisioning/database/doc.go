// Package database prepares the MariaDB side of the project.
//
// The database phase creates or replaces the application account, drops and
// recreates the primary schema, grants privileges on the primary and mock
// schemas, pins the global time zone and flushes privileges. Each sub-step
// is checked on its own and a failure names it. Nothing is rolled back.
//
// The legacy-views phase runs the project's view initialization script from
// inside the legacy views directory.
package database
