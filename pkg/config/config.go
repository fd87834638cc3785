package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/platinummonkey/flare/pkg/codegen/artifacts"
	"github.com/platinummonkey/flare/pkg/codegen/cache"
	defaults "github.com/platinummonkey/flare/pkg/codegen/config"
	"github.com/platinummonkey/flare/pkg/codegen/orchestrator"
	"github.com/platinummonkey/flare/pkg/descriptor"
	"github.com/platinummonkey/flare/pkg/observability"
)

// EnvPrefix is prepended to every environment variable, e.g. FLARE_LOG_LEVEL
const EnvPrefix = "FLARE"

// ConfigName is the base name of the auto-discovered config file (.flare.yaml)
const ConfigName = ".flare"

// Config holds all application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Project   ProjectConfig   `mapstructure:"project"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// LogConfig controls logger construction
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ProjectConfig supplies descriptor defaults taken from the host build
type ProjectConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// EngineConfig controls the generation engine
type EngineConfig struct {
	MaxParallelWorkers int `mapstructure:"max_parallel_workers"`
}

// CacheConfig controls the render cache
type CacheConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	MaxEntries int           `mapstructure:"max_entries"`
	TTL        time.Duration `mapstructure:"ttl"`

	// Redis L2. Disabled when RedisAddr is empty.
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	RedisTTL      time.Duration `mapstructure:"redis_ttl"`
	RedisPrefix   string        `mapstructure:"redis_prefix"`
}

// ArchiveConfig controls where generated trees are archived
type ArchiveConfig struct {
	Dir            string `mapstructure:"dir"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Prefix       string `mapstructure:"s3_prefix"`
	S3Region       string `mapstructure:"s3_region"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
	VerifyChecksum bool   `mapstructure:"verify_checksum"`
}

// TelemetryConfig controls OpenTelemetry export
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
	Insecure    bool   `mapstructure:"insecure"`
}

// WatchConfig controls `flare watch`
type WatchConfig struct {
	Debounce    time.Duration `mapstructure:"debounce"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// SetDefaults registers every default value on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("engine.max_parallel_workers", defaults.DefaultMaxParallelWorkers)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_entries", defaults.DefaultCacheMaxEntries)
	v.SetDefault("cache.ttl", defaults.DefaultCacheTTL)
	v.SetDefault("cache.redis_addr", "")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.redis_ttl", defaults.DefaultRedisTTL)
	v.SetDefault("cache.redis_prefix", defaults.DefaultRedisPrefix)

	v.SetDefault("archive.dir", "")
	v.SetDefault("archive.s3_bucket", "")
	v.SetDefault("archive.s3_prefix", defaults.DefaultS3Prefix)
	v.SetDefault("archive.s3_region", "")
	v.SetDefault("archive.s3_endpoint", "")
	v.SetDefault("archive.s3_access_key", "")
	v.SetDefault("archive.s3_secret_key", "")
	v.SetDefault("archive.verify_checksum", true)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "localhost:4317")
	v.SetDefault("telemetry.service_name", "flare")
	v.SetDefault("telemetry.insecure", true)

	v.SetDefault("watch.debounce", defaults.DefaultWatchDebounce)
	v.SetDefault("watch.metrics_addr", "")

	v.SetDefault("project.name", "")
	v.SetDefault("project.version", "")
}

// SetupEnv maps FLARE_SECTION_KEY environment variables onto section.key
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix FLARE_)
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting every
// problem rather than stopping at the first one
func (c *Config) Validate() []error {
	var errs []error

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format must be one of [text, json], got %q", c.Log.Format))
	}

	if c.Engine.MaxParallelWorkers < 1 {
		errs = append(errs, fmt.Errorf("config: engine.max_parallel_workers must be at least 1, got %d", c.Engine.MaxParallelWorkers))
	}

	if c.Cache.Enabled {
		if c.Cache.MaxEntries < 1 {
			errs = append(errs, fmt.Errorf("config: cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries))
		}
		if c.Cache.TTL < 0 || c.Cache.RedisTTL < 0 {
			errs = append(errs, errors.New("config: cache TTLs must not be negative"))
		}
		if c.Cache.RedisAddr != "" {
			if _, _, err := net.SplitHostPort(c.Cache.RedisAddr); err != nil {
				errs = append(errs, fmt.Errorf("config: cache.redis_addr must be host:port, got %q: %w", c.Cache.RedisAddr, err))
			}
		}
	}

	if c.Archive.S3AccessKey != "" && c.Archive.S3SecretKey == "" {
		errs = append(errs, errors.New("config: archive.s3_secret_key is required when archive.s3_access_key is set"))
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			errs = append(errs, errors.New("config: telemetry.endpoint is required when telemetry is enabled"))
		}
		if c.Telemetry.ServiceName == "" {
			errs = append(errs, errors.New("config: telemetry.service_name is required when telemetry is enabled"))
		}
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("config: watch.debounce must not be negative, got %s", c.Watch.Debounce))
	}
	if c.Watch.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.Watch.MetricsAddr); err != nil {
			errs = append(errs, fmt.Errorf("config: watch.metrics_addr must be host:port, got %q: %w", c.Watch.MetricsAddr, err))
		}
	}

	return errs
}

// EngineOptions returns the orchestrator configuration
func (c *Config) EngineOptions() *orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.MaxParallelWorkers = c.Engine.MaxParallelWorkers
	return cfg
}

// CacheOptions returns the render cache configuration
func (c *Config) CacheOptions() *cache.Config {
	cfg := cache.DefaultConfig()
	cfg.EnableL1 = true
	cfg.L1MaxEntries = c.Cache.MaxEntries
	cfg.L1TTL = c.Cache.TTL
	if c.Cache.RedisAddr != "" {
		cfg.EnableL2 = true
		cfg.L2Addr = c.Cache.RedisAddr
		cfg.L2Password = c.Cache.RedisPassword
		cfg.L2DB = c.Cache.RedisDB
		cfg.L2TTL = c.Cache.RedisTTL
		cfg.L2Prefix = c.Cache.RedisPrefix
	}
	return cfg
}

// S3Options returns the S3 archive manager configuration
func (c *Config) S3Options() *artifacts.Config {
	cfg := artifacts.DefaultConfig()
	cfg.S3Bucket = c.Archive.S3Bucket
	cfg.S3Prefix = c.Archive.S3Prefix
	cfg.S3Region = c.Archive.S3Region
	cfg.S3Endpoint = c.Archive.S3Endpoint
	cfg.AccessKeyID = c.Archive.S3AccessKey
	cfg.SecretAccessKey = c.Archive.S3SecretKey
	cfg.EnableChecksum = c.Archive.VerifyChecksum
	return cfg
}

// TelemetryOptions returns the tracing configuration
func (c *Config) TelemetryOptions(version string) observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        c.Telemetry.Enabled,
		Endpoint:       c.Telemetry.Endpoint,
		ServiceName:    c.Telemetry.ServiceName,
		ServiceVersion: version,
		Insecure:       c.Telemetry.Insecure,
	}
}

// ProjectDefaults returns the host project values used to fill descriptor gaps
func (c *Config) ProjectDefaults() descriptor.Project {
	return descriptor.Project{
		Name:    c.Project.Name,
		Version: c.Project.Version,
	}
}
