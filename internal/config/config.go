package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the top-level catalyst configuration.
type Config struct {
	// RulesFile replaces the built-in rule set when set.
	RulesFile string `mapstructure:"rules_file"`

	// SessionID binds memory parameters to a session. When empty the CLI
	// looks for .claude/project-session-id.
	SessionID string `mapstructure:"session_id"`

	Output Output `mapstructure:"output"`
	Memory Memory `mapstructure:"memory"`
}

// Output defines output preferences.
type Output struct {
	Color      bool `mapstructure:"color"`
	ASCII      bool `mapstructure:"ascii"`
	TopActions int  `mapstructure:"top_actions"`
}

// Memory defines the local memory backend settings.
type Memory struct {
	DBPath     string `mapstructure:"db_path"`
	Importance int    `mapstructure:"importance"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies CATALYST_* environment overrides and returns a Config with all
// defaults applied.
func Load(cfgFile string) (*Config, error) {
	// .env never overrides variables that are already set.
	_ = godotenv.Load(DefaultEnvFile)

	v := viper.New()

	v.SetDefault("rules_file", "")
	v.SetDefault("session_id", "")
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.ascii", DefaultOutput.ASCII)
	v.SetDefault("output.top_actions", DefaultOutput.TopActions)
	v.SetDefault("memory.db_path", DefaultMemory.DBPath)
	v.SetDefault("memory.importance", DefaultMemory.Importance)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName(strings.TrimSuffix(DefaultConfigFile, filepath.Ext(DefaultConfigFile)))
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Memory.Importance < 1 || cfg.Memory.Importance > 10 {
		return nil, fmt.Errorf("memory.importance must be between 1 and 10, got %d", cfg.Memory.Importance)
	}
	if cfg.Output.TopActions < 1 {
		cfg.Output.TopActions = DefaultOutput.TopActions
	}

	cfg.RulesFile = expandPath(cfg.RulesFile)
	cfg.Memory.DBPath = expandPath(cfg.Memory.DBPath)

	return &cfg, nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// ConfigFile returns the expanded default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}
