package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads .env (if present), configs/config.yaml (if present) and the
// environment. Environment keys use "_" for nesting, e.g. NARRATIVE_BASE_URL.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile loads configuration from an explicit YAML file.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 15)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 60)

	v.SetDefault("dataset.source", SourceCSV)
	v.SetDefault("dataset.path", "loan_data.csv")
	v.SetDefault("dataset.sample_size", 10)

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "loan_records")

	v.SetDefault("narrative.mode", ModeAuto)
	v.SetDefault("narrative.base_url", "http://localhost:11434")
	v.SetDefault("narrative.model", "llama2")
	v.SetDefault("narrative.temperature", 0.1)
	v.SetDefault("narrative.max_tokens", 800)
	v.SetDefault("narrative.timeout_ms", 30000)

	v.SetDefault("cache.driver", CacheMemory)
	v.SetDefault("cache.ttl_seconds", 3600)
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("session.idle_ttl_minutes", 30)

	v.SetDefault("rate_limit.capacity", 30)
	v.SetDefault("rate_limit.refill_seconds", 60)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Dataset.Source {
	case SourceCSV:
		if cfg.Dataset.Path == "" {
			return fmt.Errorf("dataset.path is required for the csv source")
		}
	case SourcePostgres:
		if cfg.Postgres.DSN == "" {
			return fmt.Errorf("postgres.dsn is required for the postgres source")
		}
	default:
		return fmt.Errorf("dataset.source %q is not one of csv, postgres", cfg.Dataset.Source)
	}
	if cfg.Dataset.SampleSize < 0 {
		return fmt.Errorf("dataset.sample_size must not be negative")
	}

	switch cfg.Narrative.Mode {
	case ModeAuto, ModeGenerative, ModeFallback:
	default:
		return fmt.Errorf("narrative.mode %q is not one of auto, generative, fallback", cfg.Narrative.Mode)
	}
	if cfg.Narrative.Mode != ModeFallback {
		if cfg.Narrative.BaseURL == "" || cfg.Narrative.Model == "" {
			return fmt.Errorf("narrative.base_url and narrative.model are required unless mode is fallback")
		}
	}
	if cfg.Narrative.TimeoutMS <= 0 {
		return fmt.Errorf("narrative.timeout_ms must be positive")
	}
	if cfg.Narrative.MaxTokens <= 0 {
		return fmt.Errorf("narrative.max_tokens must be positive")
	}
	if cfg.Narrative.Temperature < 0 || cfg.Narrative.Temperature > 2 {
		return fmt.Errorf("narrative.temperature must be within [0, 2]")
	}

	switch cfg.Cache.Driver {
	case CacheMemory:
	case CacheRedis:
		if cfg.Cache.Redis.Address == "" {
			return fmt.Errorf("cache.redis.address is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver %q is not one of memory, redis", cfg.Cache.Driver)
	}

	if cfg.Session.IdleTTLMinutes <= 0 {
		return fmt.Errorf("session.idle_ttl_minutes must be positive")
	}
	if cfg.RateLimit.Capacity <= 0 || cfg.RateLimit.RefillSeconds <= 0 {
		return fmt.Errorf("rate_limit.capacity and rate_limit.refill_seconds must be positive")
	}
	return nil
}
