// Package orchestration provides high-level workflow coordination for
// provisioning a JFTF development environment.
//
// This package orchestrates the provisioning workflow by delegating to
// specialized provisioners in the internal/provisioning subpackages. It
// defines the execution order; the provisioning pipeline runs the phases.
//
// # Workflow
//
// The Reconciler executes the following phases in order:
//  1. apt-dependencies - OS packages
//  2. python-venv - Virtual environment creation and activation
//  3. pip-dependencies - Python dependency manifest
//  4. database - MariaDB account, schemas, time zone
//  5. migrations - Django migrations
//  6. legacy-views - Legacy CMDB views
//  7. superuser - Django administrative user
//  8. rsyslog - Remote syslog reception
//  9. rabbitmq - Broker service and administrative user
//
// # Usage
//
//	reconciler := orchestration.NewReconciler()
//	err := reconciler.Reconcile(pctx)
//
// Running the reconciler again is safe, with one exception: the database
// phase always drops and recreates the primary schema.
package orchestration
