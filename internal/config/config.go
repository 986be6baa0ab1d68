package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Store    StoreConfig
	Redis    RedisConfig
	SQL      SQLConfig
	Mongo    MongoConfig
	Catalog  CatalogConfig
	Session  SessionConfig
	Fragment FragmentConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name                 string `envconfig:"APP_NAME" default:"concerthub-api"`
	Environment          string `envconfig:"APP_ENV" default:"development"`
	Debug                bool   `envconfig:"APP_DEBUG" default:"false"`
	Version              string `envconfig:"APP_VERSION" default:"1.0.0"`
	NotificationCapacity int    `envconfig:"NOTIFICATION_CAPACITY" default:"50"`
}

// StoreConfig selects the durable key-value backend.
type StoreConfig struct {
	Type          string        `envconfig:"STORE_TYPE" default:"sqlite"` // memory, sqlite, postgres, mysql, redis, mongodb
	Path          string        `envconfig:"STORE_PATH" default:"./data/concerthub.db"`
	SweepInterval time.Duration `envconfig:"STORE_SWEEP_INTERVAL" default:"10m"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host      string `envconfig:"REDIS_HOST" default:"localhost"`
	Port      int    `envconfig:"REDIS_PORT" default:"6379"`
	Password  string `envconfig:"REDIS_PASSWORD" default:""`
	DB        int    `envconfig:"REDIS_DB" default:"0"`
	KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"concerthub"`
}

// SQLConfig holds settings for the postgres and mysql backends.
type SQLConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"0"`
	Name     string `envconfig:"DB_NAME" default:"concerthub"`
	User     string `envconfig:"DB_USER" default:"concerthub"`
	Password string `envconfig:"DB_PASS" default:""`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// MongoConfig holds MongoDB settings.
type MongoConfig struct {
	URI        string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	Database   string `envconfig:"MONGODB_DATABASE" default:"concerthub"`
	Collection string `envconfig:"MONGODB_COLLECTION" default:"kv_store"`
}

// CatalogConfig points at the seed feed. Empty path uses the embedded seed.
type CatalogConfig struct {
	Path string `envconfig:"CATALOG_PATH" default:""`
}

// SessionConfig holds ephemeral checkout session settings.
type SessionConfig struct {
	TTL        time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	CookieName string        `envconfig:"SESSION_COOKIE" default:"concerthub_session"`
}

// FragmentConfig selects where view fragments are fetched from. Empty
// BaseURL serves the embedded fragments.
type FragmentConfig struct {
	BaseURL string        `envconfig:"FRAGMENT_BASE_URL" default:""`
	Timeout time.Duration `envconfig:"FRAGMENT_TIMEOUT" default:"5s"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Address returns the Redis address in host:port format.
func (r *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// PostgresDSN returns the PostgreSQL connection string.
func (d *SQLConfig) PostgresDSN() string {
	port := d.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, port, d.Name, d.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (d *SQLConfig) MySQLDSN() string {
	port := d.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		d.User, d.Password, d.Host, port, d.Name)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.App.NotificationCapacity < 1 {
		return nil, fmt.Errorf("NOTIFICATION_CAPACITY must be positive, got %d", cfg.App.NotificationCapacity)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
