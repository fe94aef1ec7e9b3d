// Package config handles configuration for the CLI client: defaults, an
// optional JSON file, the environment and command-line flags, in that order.
package config
