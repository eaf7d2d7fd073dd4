// Package systemd enables, starts and restarts system services.
//
// [Systemctl] shells out to "sudo systemctl" on the target host and works for
// local and ssh targets. [DBus] talks to the local systemd over the system
// bus and reports job results directly.
package systemd
