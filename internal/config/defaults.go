// Package config provides configuration loading and defaults for catalyst.
package config

// DefaultConfigDir is the default location for catalyst configuration.
const DefaultConfigDir = "~/.config/catalyst"

// DefaultDBName is the filename for the SQLite memory database.
const DefaultDBName = "catalyst.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. CATALYST_SESSION_ID.
const EnvPrefix = "CATALYST"

// DefaultEnvFile is loaded from the working directory before the
// environment is read. A missing file is ignored.
const DefaultEnvFile = ".env"

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color:      true,
	ASCII:      false,
	TopActions: 5,
}

// DefaultMemory holds the default memory settings.
var DefaultMemory = Memory{
	DBPath:     DefaultConfigDir + "/" + DefaultDBName,
	Importance: 8,
}
