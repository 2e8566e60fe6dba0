package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// Config holds the configuration for the DSA Grinders server and its dependencies.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the base URL of the server, used in outbound messages.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// Timezone is the IANA time zone the dispatcher and daily jobs run in.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// CronSecret is the shared secret required by the cron trigger endpoints.
	CronSecret string `yaml:"cron_secret" mapstructure:"cron_secret"`

	// Auth holds the token configuration for the API.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Database holds the relational store configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Mongo holds the daily-stat document store configuration.
	Mongo *MongoConfig `yaml:"mongo" mapstructure:"mongo"`
	// Cache holds the leaderboard cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// LeetCode holds the stats source configuration.
	LeetCode *LeetCodeConfig `yaml:"leetcode" mapstructure:"leetcode"`
	// Email holds the email channel configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// WhatsApp holds the WhatsApp channel configuration.
	WhatsApp *WhatsAppConfig `yaml:"whatsapp" mapstructure:"whatsapp"`
	// Dispatch holds the roast dispatcher tuning knobs.
	Dispatch *DispatchConfig `yaml:"dispatch" mapstructure:"dispatch"`
	// RateLimit holds the leaderboard rate limit configuration.
	RateLimit *RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// AuthConfig holds the token configuration for the API.
type AuthConfig struct {
	// JWTSecret is the key used to sign session tokens.
	JWTSecret string `yaml:"jwt_secret" mapstructure:"jwt_secret"`
	// TokenTTL is the lifetime of an issued token in hours.
	TokenTTL int `yaml:"token_ttl" mapstructure:"token_ttl"`
}

// DatabaseConfig holds the relational store configuration.
type DatabaseConfig struct {
	// Driver selects the database driver, either "sqlite" or "postgres".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// Path is the directory the sqlite database file lives in.
	Path string `yaml:"path" mapstructure:"path"`
	// DSN is the postgres connection string.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// MongoConfig holds the daily-stat document store configuration.
type MongoConfig struct {
	// URI is the MongoDB connection string.
	URI string `yaml:"uri" mapstructure:"uri"`
	// Database is the database name holding the daily_stats collection.
	Database string `yaml:"database" mapstructure:"database"`
}

// Cache types.
const (
	CacheTypeMemory = "memory"
	CacheTypeRedis  = "redis"
)

// CacheConfig holds the leaderboard cache configuration.
type CacheConfig struct {
	// Type selects the cache backend, either "memory" or "redis".
	Type string `yaml:"type" mapstructure:"type"`
	// RedisURL is the redis address when the redis backend is selected.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is the leaderboard cache lifetime in seconds.
	TTL int `yaml:"ttl" mapstructure:"ttl"`
}

// TTLDuration returns the cache lifetime as a duration.
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// LeetCodeConfig holds the stats source configuration.
type LeetCodeConfig struct {
	// GraphQLURL is the LeetCode GraphQL endpoint.
	GraphQLURL string `yaml:"graphql_url" mapstructure:"graphql_url"`
}

// EmailConfig holds the email channel configuration.
type EmailConfig struct {
	// Enabled indicates whether email sending is configured at all.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the address reminders are sent from.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the display name reminders are sent from.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// WhatsAppConfig holds the WhatsApp channel configuration.
type WhatsAppConfig struct {
	// Enabled indicates whether WhatsApp sending is configured at all.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// GatewayURL is the message gateway endpoint.
	GatewayURL string `yaml:"gateway_url" mapstructure:"gateway_url"`
	// Token is the bearer token for the gateway.
	Token string `yaml:"token" mapstructure:"token"`
}

// DispatchConfig holds the roast dispatcher tuning knobs.
type DispatchConfig struct {
	// BatchSize is the number of users processed concurrently per batch.
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	// BatchDelay is the pause between batches in milliseconds.
	BatchDelay int `yaml:"batch_delay" mapstructure:"batch_delay"`
	// MaxErrors caps the number of error strings returned per run.
	MaxErrors int `yaml:"max_errors" mapstructure:"max_errors"`
}

// BatchDelayDuration returns the inter-batch pause as a duration.
func (d *DispatchConfig) BatchDelayDuration() time.Duration {
	return time.Duration(d.BatchDelay) * time.Millisecond
}

// RateLimitConfig holds the leaderboard rate limit configuration.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per window per client.
	Requests int `yaml:"requests" mapstructure:"requests"`
	// Window is the rate limit window in seconds.
	Window int `yaml:"window" mapstructure:"window"`
}

// WindowDuration returns the rate limit window as a duration.
func (r *RateLimitConfig) WindowDuration() time.Duration {
	return time.Duration(r.Window) * time.Second
}

// Location resolves the configured time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Warnf("unknown timezone %s, falling back to UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("DSAGRINDERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.dsagrinders")
		v.AddConfigPath("/etc/dsagrinders")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with DSAGRINDERS_ prefix will override config file values")
	}

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3003")
	v.SetDefault("server_url", "http://localhost:3003")
	v.SetDefault("timezone", "Asia/Kolkata")

	v.SetDefault("auth.token_ttl", 168) // one week

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "dsagrinders")

	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.ttl", 300)

	v.SetDefault("leetcode.graphql_url", "https://leetcode.com/graphql")

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.from_name", "DSA Grinders")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	v.SetDefault("whatsapp.enabled", false)

	v.SetDefault("dispatch.batch_size", 10)
	v.SetDefault("dispatch.batch_delay", 1000)
	v.SetDefault("dispatch.max_errors", 5)

	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", 60)
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.Auth == nil || c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret is required")
	}
	if c.CronSecret == "" {
		return fmt.Errorf("cron secret is required")
	}

	if c.Database == nil {
		return fmt.Errorf("missing database config")
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Mongo == nil || c.Mongo.URI == "" {
		return fmt.Errorf("mongo URI is required")
	}

	if c.Cache != nil && c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when the redis cache is selected")
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	}

	if c.WhatsApp != nil && c.WhatsApp.Enabled {
		if c.WhatsApp.GatewayURL == "" {
			return fmt.Errorf("WhatsApp gateway URL is required when WhatsApp is enabled")
		}
		if c.WhatsApp.Token == "" {
			return fmt.Errorf("WhatsApp token is required when WhatsApp is enabled")
		}
	}

	if !channelConfigured(c) {
		log.Warn("No notification channels enabled, roast dispatch runs will be no-ops")
	}

	return nil
}

func channelConfigured(c *Config) bool {
	if c.Email != nil && c.Email.Enabled {
		return true
	}
	if c.WhatsApp != nil && c.WhatsApp.Enabled {
		return true
	}
	return false
}
