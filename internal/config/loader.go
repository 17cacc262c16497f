package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "SMILESCOMBINE"

// DefaultSearchPaths lists the locations probed by Discover, in order.
var DefaultSearchPaths = []string{
	"./smilescombine.yaml",
	"$HOME/.smilescombine/config.yaml",
	"/etc/smilescombine/config.yaml",
}

// newViper builds a pre-configured Viper instance: YAML file type,
// SMILESCOMBINE_ env prefix, automatic env binding, a "." → "_" key replacer
// so that "redis.addr" resolves to SMILESCOMBINE_REDIS_ADDR, and every known
// key registered with its default.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setViperDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges SMILESCOMBINE_* environment
// overrides, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromFile is an alias of Load kept for call sites that read better with
// an explicit source.
func LoadFromFile(configPath string) (*Config, error) {
	return Load(configPath)
}

// LoadFromEnv builds a Config from SMILESCOMBINE_* environment variables and
// defaults, with no config file.
//
//	SMILESCOMBINE_<SECTION>_<FIELD>   e.g.  SMILESCOMBINE_REDIS_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// Discover returns the first existing file among DefaultSearchPaths, or ""
// when none exists.
func Discover() string {
	for _, p := range DefaultSearchPaths {
		expanded := os.ExpandEnv(p)
		if expanded == "" {
			continue
		}
		if info, err := os.Stat(filepath.Clean(expanded)); err == nil && !info.IsDir() {
			return expanded
		}
	}
	return ""
}

// ResolvePath returns configPath when set, otherwise the discovered file, or
// "" when there is none.
func ResolvePath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	return Discover()
}

// LoadOrDefault loads configPath when given, otherwise the first discovered
// file, otherwise environment variables and defaults only.
func LoadOrDefault(configPath string) (*Config, error) {
	configPath = ResolvePath(configPath)
	if configPath == "" {
		return LoadFromEnv()
	}
	return Load(configPath)
}

// unmarshalAndFinalize unmarshals viper state into a Config, applies defaults,
// and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the newly parsed Config
// whenever the file changes on disk.  Only the log level is meant to be
// applied at runtime; callers pick the safe subset.
//
// Watch is non-blocking.  A change that fails to parse or validate is passed
// to onError (when non-nil) and onChange is not called.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

//Personal.AI order the ending
