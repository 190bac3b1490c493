// Package config loads, normalizes, and validates Tonearm configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob
// the CLI and sync engine need: the library root being indexed, the private
// data directory that holds the database and artwork cache, and log output
// settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized absolute paths and clear validation errors.
package config
