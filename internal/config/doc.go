// Package config loads, validates, and normalizes ludex configuration.
//
// Configuration is stored as TOML. Load resolves the file location
// (explicit flag, ~/.config/ludex/config.toml, or ./ludex.toml), applies
// defaults for missing values, expands ~ in paths, and validates the result.
// A sample config is embedded for `ludex config init`.
package config
