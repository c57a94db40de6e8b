// Package config loads, normalizes, and validates chorus configuration from
// TOML files, providing defaults suitable for a single-host deployment.
package config
