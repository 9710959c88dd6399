// Package config loads, normalizes, and validates dramagen configuration.
//
// Configuration is read from TOML (the --config flag, then
// ~/.config/dramagen/config.toml, then ./dramagen.toml), layered over
// Default(). A .env file in the working directory is loaded first, and
// environment variables override file values for credentials, provider,
// model, base URL, and log level. Load always returns a config that has
// passed Validate.
package config
