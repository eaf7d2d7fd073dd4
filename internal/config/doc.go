// Package config defines the configuration model for jftf-setup.
//
// The [Config] struct describes everything the provisioner touches: the OS
// package list, the Python virtual environment, MariaDB credentials and
// schemas, the Django management entry point, rsyslog patches and the
// RabbitMQ administrative account. [Default] returns the built-in values;
// an optional YAML file and a handful of environment variables override them.
package config
