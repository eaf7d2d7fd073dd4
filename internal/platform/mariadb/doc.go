// Package mariadb builds and executes the administrative statements that
// prepare the application database account and schemas.
//
// Statements reach the server through an [Admin]. [CLIAdmin] pipes them into
// "sudo mysql" on the target host, relying on unix socket authentication for
// root. [SQLAdmin] uses go-sql-driver/mysql with an administrative DSN.
package mariadb
