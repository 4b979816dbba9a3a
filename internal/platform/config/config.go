package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the complete process configuration, read from the environment.
type Config struct {
	Server   Server
	Database Database
	Storage  Storage
	Auth     Auth
	Redis    RedisConfig
	Kafka    Kafka
	Sweeper  Sweeper
	Log      Log
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"CONFPAPER_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"CONFPAPER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Database struct {
	Driver string `env:"DATABASE_DRIVER" envDefault:"memory"`
	DSN    string `env:"DATABASE_URL"`
}

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

type Storage struct {
	Backend     string        `env:"STORAGE_BACKEND" envDefault:"local"`
	Root        string        `env:"STORAGE_ROOT" envDefault:"./data/uploads"`
	S3Endpoint  string        `env:"S3_ENDPOINT"`
	S3Region    string        `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket    string        `env:"S3_BUCKET"`
	S3AccessKey string        `env:"S3_ACCESS_KEY"`
	S3SecretKey string        `env:"S3_SECRET_KEY"`
	MaxUpload   int64         `env:"STORAGE_MAX_UPLOAD_BYTES" envDefault:"52428800"`
	OpTimeout   time.Duration `env:"STORAGE_OP_TIMEOUT" envDefault:"30s"`
}

type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"confpaper"`
	JWTAudience   string `env:"JWT_AUDIENCE" envDefault:"confpaper-api"`
}

// RedisConfig enables token revocation checks when URL is set.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka enables the audit sink when Brokers is non-empty.
type Kafka struct {
	Brokers  []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic    string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"confpaper.audit"`
	ClientID string   `env:"KAFKA_CLIENT_ID" envDefault:"confpaper"`
}

type Sweeper struct {
	Enabled  bool          `env:"SWEEPER_ENABLED" envDefault:"true"`
	Schedule string        `env:"SWEEPER_SCHEDULE" envDefault:"@every 1h"`
	Grace    time.Duration `env:"SWEEPER_GRACE" envDefault:"24h"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if strings.TrimSpace(c.Database.DSN) == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	switch strings.ToLower(c.Storage.Backend) {
	case StorageLocal:
		if strings.TrimSpace(c.Storage.Root) == "" {
			return fmt.Errorf("STORAGE_ROOT is required for local storage")
		}
	case StorageS3:
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Storage.MaxUpload <= 0 {
		return fmt.Errorf("STORAGE_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}
