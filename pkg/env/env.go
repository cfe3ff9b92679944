// Package env reads raw environment variables for bootstrap code that runs
// before the envconfig-backed configuration is available. Everything after
// config.Load should take its values from config, not from here.
package env

import "os"

// Get returns the value of the given environment variable or a fallback.
// The logger uses this for LOG_FORMAT, which has to be resolved before the
// configuration (and its load-failure logging) exists.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
