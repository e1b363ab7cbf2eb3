package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ObjectStoreAzure      = "azure"
	ObjectStoreFilesystem = "filesystem"
)

// Config holds all configuration for the service
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    PostgresConfig    `mapstructure:"database"`
	ObjectStore ObjectStoreConfig `mapstructure:"objectstore"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Reporting   ReportingConfig   `mapstructure:"reporting"`
	Ingest      IngestConfig      `mapstructure:"ingest"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the lib/pq connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

type ObjectStoreConfig struct {
	Backend          string `mapstructure:"backend"`
	ConnectionString string `mapstructure:"connection_string"`
	Container        string `mapstructure:"container"`
	BasePath         string `mapstructure:"base_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ReportingConfig struct {
	CollisionPolicy string        `mapstructure:"collision_policy"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
}

type IngestConfig struct {
	CompensateOrphans bool  `mapstructure:"compensate_orphans"`
	MaxImageSize      int64 `mapstructure:"max_image_size"`
}

type MonitoringConfig struct {
	EventWindow time.Duration `mapstructure:"event_window"`
}

// Load initializes configuration from a .env file, environment variables and config file
func Load() (*Config, error) {
	// a missing .env is fine, the process environment may already be populated
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ZTP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// legacyEnv maps config keys to the unprefixed variables older deployments set.
// The ZTP_ variable wins when both are present.
var legacyEnv = map[string]string{
	"database.host":                 "DB_HOST",
	"database.port":                 "DB_PORT",
	"database.user":                 "DB_USER",
	"database.password":             "DB_PASSWORD",
	"database.dbname":               "DB_NAME",
	"objectstore.connection_string": "AZURE_STORAGE_CONNECTION_STRING",
	"objectstore.container":         "AZURE_STORAGE_CONTAINER",
}

func bindLegacyEnv(v *viper.Viper) error {
	replacer := strings.NewReplacer(".", "__")
	for key, legacy := range legacyEnv {
		primary := "ZTP_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(key, primary, legacy); err != nil {
			return fmt.Errorf("error binding environment for %s: %w", key, err)
		}
	}
	return nil
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	// Object store defaults
	v.SetDefault("objectstore.backend", ObjectStoreAzure)
	v.SetDefault("objectstore.connection_string", "")
	v.SetDefault("objectstore.container", "")
	v.SetDefault("objectstore.base_path", "./data/archive")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Reporting defaults
	v.SetDefault("reporting.collision_policy", "last_wins")
	v.SetDefault("reporting.cache_ttl", "30s")

	// Ingest defaults
	v.SetDefault("ingest.compensate_orphans", false)
	v.SetDefault("ingest.max_image_size", 10*1024*1024) // 10MB

	// Monitoring defaults
	v.SetDefault("monitoring.event_window", "1h")
}

func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}
	switch config.ObjectStore.Backend {
	case ObjectStoreAzure:
		if config.ObjectStore.ConnectionString == "" {
			return fmt.Errorf("objectstore connection string is required for the azure backend")
		}
		if config.ObjectStore.Container == "" {
			return fmt.Errorf("objectstore container is required for the azure backend")
		}
	case ObjectStoreFilesystem:
		if config.ObjectStore.BasePath == "" {
			return fmt.Errorf("objectstore base path is required for the filesystem backend")
		}
	default:
		return fmt.Errorf("unknown objectstore backend %q", config.ObjectStore.Backend)
	}
	switch config.Reporting.CollisionPolicy {
	case "last_wins", "first_wins":
	default:
		return fmt.Errorf("unknown reporting collision policy %q", config.Reporting.CollisionPolicy)
	}
	if config.Ingest.MaxImageSize <= 0 {
		return fmt.Errorf("ingest max image size must be positive")
	}
	return nil
}
