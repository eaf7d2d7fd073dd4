// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used for SSH dials and for waiting on
// services such as the RabbitMQ node, which report readiness only after boot.
package retry
