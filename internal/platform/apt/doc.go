// Package apt installs Debian packages on the target host.
//
// A package is queried with dpkg-query first and the installer only runs for
// packages that are not installed yet, so repeated runs are cheap.
package apt
