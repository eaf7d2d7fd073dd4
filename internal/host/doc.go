// Package host abstracts the machine being provisioned.
//
// Every external invocation goes through [Host.Run] as a [Command], so the
// exit status of each call is checked individually and reported as an
// [ExitError]. [Local] executes on the current machine; [SSH] executes on a
// remote development VM. File checks used as preconditions (manifest,
// manage.py, rsyslog.conf) are part of the same interface so both targets
// behave the same way.
package host
