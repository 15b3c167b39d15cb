// Package config loads blendsync settings from the config file, environment
// variables and command-line flags.
package config

// Default configuration values.
const (
	// AppName names the config, data and state directories.
	AppName = "blendsync"

	// EnvPrefix prefixes environment overrides, e.g. BLENDSYNC_NEWER_ONLY.
	EnvPrefix = "BLENDSYNC"

	// DefaultPolicy is the compatibility policy used when none is configured.
	DefaultPolicy = "version"

	// DefaultRetentionDays is the number of days history entries are kept.
	DefaultRetentionDays = 90

	// DefaultLogMaxSize is the log size that triggers rotation.
	DefaultLogMaxSize = "5MB"
)
