// Package python manages the project virtual environment and its pip
// dependencies on the target host.
package python
