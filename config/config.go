// Package config loads hubcache settings from a YAML file and HUBCACHE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/unkn0wn-root/hubcache"
)

const EnvPrefix = "HUBCACHE"

type Config struct {
	Namespace          string        `mapstructure:"namespace"`
	Provider           string        `mapstructure:"provider"` // ristretto | bigcache | redis
	GenStore           string        `mapstructure:"genstore"` // local | redis
	DefaultCacheTime   time.Duration `mapstructure:"default_cache_time"`
	ShortTermCacheTime time.Duration `mapstructure:"short_term_cache_time"`
	MissingActor       string        `mapstructure:"missing_actor"` // skip | zero_bucket
	Disabled           bool          `mapstructure:"disabled"`

	Redis     RedisConfig     `mapstructure:"redis"`
	Ristretto RistrettoConfig `mapstructure:"ristretto"`
	Bigcache  BigcacheConfig  `mapstructure:"bigcache"`
	Log       LogConfig       `mapstructure:"log"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ScanCount int64         `mapstructure:"scan_count"`
	GenTTL    time.Duration `mapstructure:"gen_ttl"` // 0 = generations never expire
}

type RistrettoConfig struct {
	NumCounters int64 `mapstructure:"num_counters"`
	MaxCost     int64 `mapstructure:"max_cost"`
	BufferItems int64 `mapstructure:"buffer_items"`
	Metrics     bool  `mapstructure:"metrics"`
}

type BigcacheConfig struct {
	LifeWindow         time.Duration `mapstructure:"life_window"`
	CleanWindow        time.Duration `mapstructure:"clean_window"`
	MaxEntriesInWindow int           `mapstructure:"max_entries_in_window"`
	MaxEntrySize       int           `mapstructure:"max_entry_size"`
	HardMaxCacheSizeMB int           `mapstructure:"hard_max_cache_size_mb"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // json | console
}

// Load reads path (when non-empty) or config.yaml from the usual locations,
// then overlays HUBCACHE_* variables, e.g. HUBCACHE_REDIS_ADDR.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("hubcache")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/hubcache/")
		v.AddConfigPath("$HOME/.hubcache")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var nf viper.ConfigFileNotFoundError
			if !errors.As(err, &nf) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// defaults and env only
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("namespace", "hub")
	v.SetDefault("provider", "ristretto")
	v.SetDefault("genstore", "local")
	v.SetDefault("default_cache_time", hubcache.DefaultCacheTime)
	v.SetDefault("short_term_cache_time", hubcache.ShortTermCacheTime)
	v.SetDefault("missing_actor", "skip")
	v.SetDefault("disabled", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.scan_count", 500)
	v.SetDefault("redis.gen_ttl", 0)

	v.SetDefault("ristretto.num_counters", int64(1_000_000))
	v.SetDefault("ristretto.max_cost", int64(64<<20))
	v.SetDefault("ristretto.buffer_items", 64)
	v.SetDefault("ristretto.metrics", false)

	v.SetDefault("bigcache.life_window", 10*time.Minute)
	v.SetDefault("bigcache.clean_window", time.Minute)
	v.SetDefault("bigcache.max_entries_in_window", 10000)
	v.SetDefault("bigcache.max_entry_size", 1024)
	v.SetDefault("bigcache.hard_max_cache_size_mb", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

func (c *Config) Validate() error {
	if c.Namespace == "" {
		return errors.New("config: namespace is required")
	}
	switch c.Provider {
	case "ristretto", "bigcache", "redis":
	default:
		return fmt.Errorf("config: unknown provider %q", c.Provider)
	}
	switch c.GenStore {
	case "local":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("config: redis genstore needs redis.addr")
		}
	default:
		return fmt.Errorf("config: unknown genstore %q", c.GenStore)
	}
	if _, err := c.MissingActorPolicy(); err != nil {
		return err
	}
	return nil
}

func (c *Config) MissingActorPolicy() (hubcache.MissingActorPolicy, error) {
	switch c.MissingActor {
	case "", "skip":
		return hubcache.SkipScoped, nil
	case "zero_bucket":
		return hubcache.ZeroBucket, nil
	}
	return 0, fmt.Errorf("config: unknown missing_actor policy %q", c.MissingActor)
}
