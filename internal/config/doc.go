// Package config loads and validates the TOML configuration for reelpick.
//
// Defaults come from Default(); a config file overrides defaults and
// command-line flags override both. Only configuration-level problems are
// fatal; anything that can fail per input file is handled downstream.
package config
