// Package config loads, normalizes, and validates libretto's TOML
// configuration. Path fields are tilde-expanded and made absolute during
// Load; callers receive a config that is ready to use.
package config
