// Package main is the entry point for the jftf-setup CLI.
//
// jftf-setup prepares a development machine for the JFTF test framework:
// OS packages, the Python virtual environment, the MariaDB schemas, the
// Django application, remote syslog reception and the RabbitMQ broker.
//
// Commands: setup, plan, doctor, version, completion.
//
// For detailed usage information, run:
//
//	jftf-setup --help
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jftf/jftf-setup/cmd/jftf-setup/commands"
	"github.com/jftf/jftf-setup/cmd/jftf-setup/handlers"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode prints err and returns the process exit status for it.
func exitCode(err error) int {
	var exitErr *handlers.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}
