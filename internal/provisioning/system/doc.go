// Package system installs the operating system packages the development
// environment depends on.
//
// Packages are queried with dpkg-query first; apt-get only runs for packages
// that are not installed. The whole list is always attempted and failures
// are reported together once the loop finished.
package system
