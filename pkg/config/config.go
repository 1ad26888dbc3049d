// Package config resolves apv settings from defaults, config files, APV_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fulmenhq/appversion/pkg/record"
)

// EnvPrefix is prepended to every environment override (APV_RECORD_FILE).
const EnvPrefix = "APV"

// ProjectConfigName is the per-project config file looked up in the root.
const ProjectConfigName = ".apv"

// Config holds all configuration for apv
type Config struct {
	Record      RecordConfig      `mapstructure:"record"`
	Status      StatusConfig      `mapstructure:"status"`
	Propagation PropagationConfig `mapstructure:"propagation"`
	Badge       BadgeConfig       `mapstructure:"badge"`
	UpdateCheck UpdateCheckConfig `mapstructure:"update_check"`
	DateLayout  string            `mapstructure:"date_layout"`
	Log         LogConfig         `mapstructure:"log"`
}

// RecordConfig locates the record file
type RecordConfig struct {
	File string `mapstructure:"file"`
}

// StatusConfig controls set-status validation
type StatusConfig struct {
	// Validate restricts stages to stable, rc, beta and alpha.
	Validate bool `mapstructure:"validate"`
}

// PropagationConfig holds manifest propagation options
type PropagationConfig struct {
	Workers          int      `mapstructure:"workers"`
	RespectGitignore bool     `mapstructure:"respect_gitignore"`
	DefaultIgnore    []string `mapstructure:"default_ignore"`
}

// BadgeConfig overrides the badge handlebars templates
type BadgeConfig struct {
	Template string `mapstructure:"template"`
	URL      string `mapstructure:"url"`
}

// UpdateCheckConfig controls the startup upgrade notice
type UpdateCheckConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
	Source  string        `mapstructure:"source"`
	Module  string        `mapstructure:"module"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// FlagBindings maps config keys to the pflag names that override them.
var FlagBindings = map[string]string{
	"record.file":     "file",
	"log.level":       "log-level",
	"log.json":        "json-logs",
	"date_layout":     "date-layout",
	"status.validate": "validate-status",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("record.file", record.DefaultFilename)
	v.SetDefault("status.validate", true)
	v.SetDefault("propagation.workers", 4)
	v.SetDefault("propagation.respect_gitignore", false)
	v.SetDefault("propagation.default_ignore", []string{"node_modules", "bower_components", ".git"})
	v.SetDefault("badge.template", "")
	v.SetDefault("badge.url", "")
	v.SetDefault("update_check.enabled", true)
	v.SetDefault("update_check.timeout", 2*time.Second)
	v.SetDefault("update_check.source", "go")
	v.SetDefault("update_check.module", "github.com/fulmenhq/appversion")
	v.SetDefault("date_layout", time.RFC3339)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Options controls where Load looks for configuration.
type Options struct {
	// Root is the project root searched for .apv.yaml.
	Root string
	// Home overrides the user home directory; empty uses os.UserHomeDir.
	Home string
	// Flags, when set, override file and environment values for the keys
	// in FlagBindings whose flag was changed on the command line.
	Flags *pflag.FlagSet
}

// Load resolves the configuration with precedence
// defaults < $HOME/.apv/config < <root>/.apv.yaml < APV_* env < flags.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if dir, err := homeConfigDir(opts.Home); err == nil {
		if err := mergeFile(v, dir, "config"); err != nil {
			return nil, err
		}
	}

	root := opts.Root
	if root == "" {
		root = "."
	}
	if err := mergeFile(v, root, ProjectConfigName); err != nil {
		return nil, err
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for key, name := range FlagBindings {
			f := opts.Flags.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if cfg.Propagation.Workers <= 0 {
		return nil, fmt.Errorf("propagation.workers must be positive, got %d", cfg.Propagation.Workers)
	}
	return &cfg, nil
}

// mergeFile merges dir/name.{yaml,yml,json,toml} into v when one exists.
func mergeFile(v *viper.Viper, dir, name string) error {
	fv := viper.New()
	fv.SetConfigName(name)
	fv.AddConfigPath(dir)
	if err := fv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", filepath.Join(dir, name), err)
	}
	if err := v.MergeConfigMap(fv.AllSettings()); err != nil {
		return fmt.Errorf("merge config %s: %w", fv.ConfigFileUsed(), err)
	}
	return nil
}

func homeConfigDir(home string) (string, error) {
	if home == "" {
		if env := os.Getenv("APV_HOME"); env != "" {
			return env, nil
		}
		h, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %v", err)
		}
		home = h
	}
	return filepath.Join(home, ".apv"), nil
}
