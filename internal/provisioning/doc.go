// Package provisioning provides shared types, interfaces, and orchestration
// for provisioning a JFTF development host.
//
// # Subpackages
//
//   - system/: OS packages
//   - pyenv/: Virtual environment and pip dependencies
//   - database/: MariaDB account, schemas and legacy views
//   - webapp/: Django migrations and the administrative user
//   - logging/: rsyslog remote logging
//   - broker/: RabbitMQ service and administrative user
//
// # Core Types
//
// Context carries configuration, state, the target host, the service manager and the observer.
// Phase defines a provisioning step with Name() and Provision() methods.
// Pipeline runs phases in order and applies each phase's failure policy.
// State accumulates results from each phase (activated environment, phase outcomes).
package provisioning
