// Package config loads skillsync settings from flags, SKILLSYNC_* environment
// variables and an optional skillsync.yaml file through viper. With nothing
// configured, the source is the current working directory and the
// destination is ~/.claude.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment overrides, e.g. SKILLSYNC_DEST.
	EnvPrefix = "SKILLSYNC"
	// FileName is the config file name without extension.
	FileName = "skillsync"

	DefaultCommandFile  = "initialize-project.md"
	DefaultSkillPattern = "*.md"
	DefaultDebounce     = 500 * time.Millisecond

	claudeDir = ".claude"
)

// Config holds the resolved settings for a run
type Config struct {
	Source       string      `mapstructure:"source" yaml:"source"`
	Dest         string      `mapstructure:"dest" yaml:"dest"`
	CommandFile  string      `mapstructure:"command_file" yaml:"command_file"`
	SkillPattern string      `mapstructure:"skill_pattern" yaml:"skill_pattern"`
	Exclude      []string    `mapstructure:"exclude" yaml:"exclude"`
	LogLevel     string      `mapstructure:"log_level" yaml:"log_level"`
	LogFormat    string      `mapstructure:"log_format" yaml:"log_format"`
	Watch        WatchConfig `mapstructure:"watch" yaml:"watch"`
}

// WatchConfig configures the watch command
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

// Setup wires env and config-file lookup into v and registers defaults.
// A missing config file is not an error; a malformed one is.
func Setup(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.skillsync")
	v.AddConfigPath(".")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// SetDefaults registers every key so that env overrides are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", "")
	v.SetDefault("dest", "")
	v.SetDefault("command_file", DefaultCommandFile)
	v.SetDefault("skill_pattern", DefaultSkillPattern)
	v.SetDefault("exclude", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("watch.debounce", DefaultDebounce)
}

// Load decodes v into a Config, resolves the source and destination paths
// and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to unmarshal configuration")
	}

	if err := cfg.resolvePaths(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) resolvePaths() error {
	var err error

	if c.Source == "" {
		c.Source, err = os.Getwd()
		if err != nil {
			return errors.Wrap(err, "failed to get current working directory")
		}
	}
	if c.Source, err = expandHome(c.Source); err != nil {
		return err
	}

	if c.Dest == "" {
		c.Dest, err = DefaultDest()
		if err != nil {
			return err
		}
	}
	if c.Dest, err = expandHome(c.Dest); err != nil {
		return err
	}

	if c.Source, err = filepath.Abs(c.Source); err != nil {
		return errors.Wrap(err, "failed to resolve source directory")
	}
	if c.Dest, err = filepath.Abs(c.Dest); err != nil {
		return errors.Wrap(err, "failed to resolve destination directory")
	}
	return nil
}

// DefaultDest returns <home>/.claude.
func DefaultDest() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, claudeDir), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Validate checks values that cannot be caught by decoding alone
func (c Config) Validate() error {
	if c.CommandFile == "" {
		return errors.New("command_file cannot be empty")
	}
	if filepath.Base(c.CommandFile) != c.CommandFile {
		return errors.Errorf("command_file %q must be a file name, not a path", c.CommandFile)
	}
	if !doublestar.ValidatePattern(c.SkillPattern) {
		return errors.Errorf("invalid skill_pattern %q", c.SkillPattern)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.Errorf("invalid log_format %q: must be one of text, json", c.LogFormat)
	}
	if c.Watch.Debounce < 0 {
		return errors.Errorf("watch.debounce cannot be negative: %s", c.Watch.Debounce)
	}
	return nil
}
