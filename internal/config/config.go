// Package config loads settings from an optional YAML file, the environment
// and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Name is the config file base name and environment prefix.
const Name = "dupes"

// Log configures logging.
type Log struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// Config holds the settings that are not tied to a single run.
type Config struct {
	// Workers bounds the number of files hashed concurrently (0 = number of CPUs).
	Workers int `mapstructure:"workers"`
	// Algorithm names the digest algorithm.
	Algorithm string `mapstructure:"algorithm"`
	// BufferSize is the hashing read buffer, e.g. "1MiB".
	BufferSize string `mapstructure:"buffer_size"`
	// ProgressInterval controls progress display cadence.
	ProgressInterval time.Duration `mapstructure:"progress_interval"`
	// Log configures logging.
	Log Log `mapstructure:"log"`
}

// flagBindings maps config keys to the flags that override them.
//
//nolint:gochecknoglobals // Config constant
var flagBindings = map[string]string{
	"workers":     "workers",
	"algorithm":   "algorithm",
	"buffer_size": "buffer-size",
	"log.file":    "log-file",
	"log.level":   "log-level",
}

// Load reads the configuration. An explicit file must exist; otherwise
// dupes.yaml is looked up in $HOME/.config/dupes and the working directory
// and is optional. Changed flags in flags override every other source.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", 0)
	v.SetDefault("algorithm", "sha256")
	v.SetDefault("buffer_size", "1MiB")
	v.SetDefault("progress_interval", 500*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)

	v.SetEnvPrefix(strings.ToUpper(Name))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagBindings {
			flag := flags.Lookup(name)
			if flag == nil {
				continue
			}

			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("binding flag %q: %w", name, err)
			}
		}
	}

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.config/" + Name)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	return &cfg, nil
}
