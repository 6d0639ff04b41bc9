package config

import "time"

// Config is the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Narrative NarrativeConfig `mapstructure:"narrative"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // seconds
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type DatasetConfig struct {
	Source     string `mapstructure:"source"`
	Path       string `mapstructure:"path"`
	SampleSize int    `mapstructure:"sample_size"`
}

type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

const (
	ModeAuto       = "auto"
	ModeGenerative = "generative"
	ModeFallback   = "fallback"
)

type NarrativeConfig struct {
	Mode        string  `mapstructure:"mode"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TimeoutMS   int     `mapstructure:"timeout_ms"`
}

func (n NarrativeConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutMS) * time.Millisecond
}

const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type CacheConfig struct {
	Driver     string      `mapstructure:"driver"`
	TTLSeconds int         `mapstructure:"ttl_seconds"`
	Redis      RedisConfig `mapstructure:"redis"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SessionConfig struct {
	IdleTTLMinutes int `mapstructure:"idle_ttl_minutes"`
}

func (s SessionConfig) IdleTTL() time.Duration {
	return time.Duration(s.IdleTTLMinutes) * time.Minute
}

type RateLimitConfig struct {
	Capacity      int `mapstructure:"capacity"`
	RefillSeconds int `mapstructure:"refill_seconds"`
}

func (r RateLimitConfig) Refill() time.Duration {
	return time.Duration(r.RefillSeconds) * time.Second
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Seconds converts a seconds setting to a duration.
func Seconds(s int) time.Duration {
	return time.Duration(s) * time.Second
}
