// Package broker enables the RabbitMQ server and configures the
// administrative account the JFTF services connect with.
//
// The user is created on the first run. Later runs find it in list_users
// and reset its password instead, so the configured credentials always win.
package broker
