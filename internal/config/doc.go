// Package config loads, normalizes, and validates Rookery configuration.
//
// Configuration comes from a TOML file (default ~/.config/rookery/config.toml
// or ./rookery.toml), with defaults applied for anything unset. Path fields
// are tilde-expanded and made absolute during load so downstream packages
// never deal with relative paths.
package config
