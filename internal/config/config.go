package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. EHR_DATABASE_HOST
const EnvPrefix = "ehr"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Filters   FiltersConfig   `mapstructure:"filters"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" split_words:"true"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" split_words:"true"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" split_words:"true"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" split_words:"true"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

// AuthConfig describes how bearer tokens issued by the identity service
// are verified.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" envconfig:"jwt_secret"`
	Issuer    string        `mapstructure:"issuer"`
	Leeway    time.Duration `mapstructure:"leeway"`
}

// RedisConfig enables logout revocation when URL is set
type RedisConfig struct {
	URL          string `mapstructure:"url"`
	PoolSize     int    `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int    `mapstructure:"min_idle_conns" split_words:"true"`
	MaxRetries   int    `mapstructure:"max_retries" split_words:"true"`
}

// DashboardConfig controls the in-process stats cache. A zero TTL
// disables caching.
type DashboardConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl" split_words:"true"`
}

type FiltersConfig struct {
	// StrictBooleans rejects is_filled values other than true/false
	// instead of reading them as false.
	StrictBooleans bool `mapstructure:"strict_booleans" split_words:"true"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true"`
	Burst             int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// setDefaults registers fallbacks so a missing config file still yields a
// runnable configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "ehr")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.leeway", 30*time.Second)

	v.SetDefault("dashboard.cache_ttl", time.Duration(0))
	v.SetDefault("filters.strict_booleans", false)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads config.yml from file (when non-empty) or from the usual
// search paths, then applies EHR_* environment overrides.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")           // current directory
		v.AddConfigPath("./config")    // config subdirectory
		v.AddConfigPath("/app")        // container root directory
		v.AddConfigPath("/app/config") // container config directory
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with
func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		problems = append(problems, "server.mode must be one of debug, release, test")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwt_secret is required")
	}
	if c.Dashboard.CacheTTL < 0 {
		problems = append(problems, "dashboard.cache_ttl must not be negative")
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		problems = append(problems, "rate_limit.requests_per_second and rate_limit.burst must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
