package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/Rohit-bisht-rise/shopmanagement/pkg/config"
	"github.com/Rohit-bisht-rise/shopmanagement/pkg/database"
)

const (
	defaultResetSecret  = "change-this-to-a-secure-secret"
	minResetSecretBytes = 32
)

// Config holds all configuration for the CRM service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"SERVICE_VERSION" envDefault:"0.1.0"`

	// HTTP server
	HTTPPort          int      `env:"CRM_HTTP_PORT" envDefault:"8010"`
	BaseURL           string   `env:"BASE_URL" envDefault:"http://localhost:8010"`
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envSeparator:","`

	// PostgreSQL
	PostgresHost       string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort       int           `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser       string        `env:"POSTGRES_USER" envDefault:"crm"`
	PostgresPass       string        `env:"POSTGRES_PASSWORD" envDefault:"crm_secret"`
	PostgresDB         string        `env:"CRM_DB_NAME" envDefault:"crm_db"`
	PostgresSSL        string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns         int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetime  time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime  time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	SlowQueryThreshold int           `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Sessions
	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"336h"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" envDefault:"sessionid"`

	// Login and reset-request throttling per client address. 0 disables.
	AuthRatePerMinute int `env:"AUTH_RATE_PER_MINUTE" envDefault:"10"`
	AuthRateBurst     int `env:"AUTH_RATE_BURST" envDefault:"5"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"true"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Password reset
	ResetTokenSecret string        `env:"RESET_TOKEN_SECRET" envDefault:"change-this-to-a-secure-secret"`
	ResetTokenExpiry time.Duration `env:"RESET_TOKEN_EXPIRY" envDefault:"1h"`

	// Avatars
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	MediaURLPrefix string `env:"MEDIA_URL_PREFIX" envDefault:"/media"`

	// Tracing
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load crm config: %w", err)
	}
	return cfg, nil
}

// Validate is run by pkgconfig.Load after parsing.
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ResetTokenExpiry <= 0 {
		return errors.New("RESET_TOKEN_EXPIRY must be positive")
	}
	if c.AuthRatePerMinute < 0 || c.AuthRateBurst < 0 {
		return errors.New("AUTH_RATE_PER_MINUTE and AUTH_RATE_BURST must not be negative")
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %v", c.OTELSampleRate)
	}

	if !c.IsDevelopment() {
		if c.ResetTokenSecret == defaultResetSecret {
			return fmt.Errorf("RESET_TOKEN_SECRET must be explicitly set in %q mode", c.Environment)
		}
		if len(c.ResetTokenSecret) < minResetSecretBytes {
			return fmt.Errorf("RESET_TOKEN_SECRET must be at least %d characters long, got %d", minResetSecretBytes, len(c.ResetTokenSecret))
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Postgres returns the pool settings for database.NewPostgresPool.
func (c *Config) Postgres() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		MaxConnIdleTime: c.DBMaxConnIdleTime,
	}
}

func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryThreshold) * time.Millisecond
}
