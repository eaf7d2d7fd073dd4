// Package testing provides test utilities, builders, and fixtures for unit and integration tests.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - ConfigBuilder: Fluent builder for creating test configurations
//   - HostFixture: Pre-scripted fake hosts for common scenarios
//   - MockObserver, MockServices, MockAdmin: Recording doubles for provisioning dependencies
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithProjectRoot("/srv/jftf").
//	    WithStep("rsyslog", false, "").
//	    Build()
//
//	fake := testing.NewHostFixture(cfg).Provisioned()
//	pctx, obs := testing.NewProvisioningContext(t, cfg, fake)
package testing
