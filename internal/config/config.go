// Package config loads the server configuration from YAML, filling in
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verdancy/bramble"
)

// Duration wraps time.Duration so YAML can carry values like "15m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Cache backends accepted in CacheConfig.Backend.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheBadger = "badger"
)

// RedisConfig locates the Redis used for the render cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// BadgerConfig locates the on-disk Badger cache.
type BadgerConfig struct {
	Dir string `yaml:"dir"`
}

// CacheConfig selects and configures the render cache backend.
type CacheConfig struct {
	Backend  string       `yaml:"backend"`
	TTL      Duration     `yaml:"ttl"`
	Compress bool         `yaml:"compress"`
	Redis    RedisConfig  `yaml:"redis"`
	Badger   BadgerConfig `yaml:"badger"`
}

// LimitsConfig bounds a single request. Zero fields inherit the engine
// defaults.
type LimitsConfig struct {
	MaxDepth    int `yaml:"max_depth"`
	MaxBudget   int `yaml:"max_budget"`
	MaxSegments int `yaml:"max_segments"`
}

// Limits converts the config values to engine limits, keeping defaults
// for unset fields.
func (l LimitsConfig) Limits() bramble.Limits {
	out := bramble.DefaultLimits
	if l.MaxDepth > 0 {
		out.MaxDepth = l.MaxDepth
	}
	if l.MaxBudget > 0 {
		out.MaxBudget = l.MaxBudget
	}
	if l.MaxSegments > 0 {
		out.MaxSegments = l.MaxSegments
	}
	return out
}

// Config is the full server configuration.
type Config struct {
	// Listen is the HTTP bind address, e.g. ":8080".
	Listen string `yaml:"listen"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PresetDir points at a directory of preset YAML files. Empty
	// disables file-backed presets.
	PresetDir string       `yaml:"preset_dir"`
	Cache     CacheConfig  `yaml:"cache"`
	Limits    LimitsConfig `yaml:"limits"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		Cache: CacheConfig{
			Backend: CacheNone,
			Redis: RedisConfig{
				Addr: "localhost:6379",
			},
		},
	}
}

// Load reads path and overlays it on the defaults. An empty path returns
// the defaults untouched.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", CacheNone, CacheMemory, CacheRedis, CacheBadger:
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == CacheBadger && c.Cache.Badger.Dir == "" {
		return fmt.Errorf("cache backend %q requires cache.badger.dir", CacheBadger)
	}
	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache backend %q requires cache.redis.addr", CacheRedis)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	return nil
}
