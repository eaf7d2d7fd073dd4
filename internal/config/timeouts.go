package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	Command           time.Duration // Upper bound for a single external command
	BrokerWait        time.Duration // Upper bound for the broker to accept rabbitmqctl calls
	SSHDial           time.Duration // TCP dial timeout for ssh targets
	RetryMaxAttempts  int           // Maximum number of retry attempts
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - JFTF_TIMEOUT_COMMAND (default: 30m)
//   - JFTF_TIMEOUT_BROKER_WAIT (default: 2m)
//   - JFTF_TIMEOUT_SSH_DIAL (default: 10s)
//   - JFTF_RETRY_MAX_ATTEMPTS (default: 5)
//   - JFTF_RETRY_INITIAL_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Command:           parseDuration("JFTF_TIMEOUT_COMMAND", 30*time.Minute),
		BrokerWait:        parseDuration("JFTF_TIMEOUT_BROKER_WAIT", 2*time.Minute),
		SSHDial:           parseDuration("JFTF_TIMEOUT_SSH_DIAL", 10*time.Second),
		RetryMaxAttempts:  parseInt("JFTF_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("JFTF_RETRY_INITIAL_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
