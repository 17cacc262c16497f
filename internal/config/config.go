// Package config defines all configuration structures for smilescombine.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// RateLimitRPS throttles library generation per client IP; 0 disables it.
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	// MaxNMax caps nmax for libraries built inside a request; a negative
	// value removes the cap.  Queued requests are not capped.
	MaxNMax int `mapstructure:"max_nmax"`

	// GenerateTimeout bounds a library built inside a request.
	GenerateTimeout time.Duration `mapstructure:"generate_timeout"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Logging converts the section into the logging package's LogConfig.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{
		Level:       l.Level,
		Format:      l.Format,
		OutputPaths: l.OutputPaths,
	}
}

// CombinerConfig holds the defaults applied to combination requests that do
// not set the corresponding field themselves.
type CombinerConfig struct {
	// NMax caps the number of user substitutions per structure.  A negative
	// value means unbounded.
	NMax          int    `mapstructure:"nmax"`
	NConnect      int    `mapstructure:"nconnect"`
	ConnectAtom   string `mapstructure:"connect_atom"`
	AutoPlacement bool   `mapstructure:"auto_placement"`
	// OutputDir receives one <name>.smi file per run.
	OutputDir string `mapstructure:"output_dir"`
}

// RedisConfig holds Redis connection parameters for the canonical-form cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// MinIOConfig holds MinIO / S3-compatible object-storage parameters used for
// library artifacts.
type MinIOConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	ObjectPrefix string `mapstructure:"object_prefix"`
}

// PostgresConfig holds PostgreSQL connection parameters for the run history.
type PostgresConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// KafkaConfig holds Apache Kafka parameters.  Topic carries library
// generated events; RequestTopic feeds the worker command.
type KafkaConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Brokers         []string      `mapstructure:"brokers"`
	Topic           string        `mapstructure:"topic"`
	BatchSize       int           `mapstructure:"batch_size"`
	BatchTimeout    time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequiredAcks    int           `mapstructure:"required_acks"` // -1 all, 0 none, 1 leader
	MaxAttempts     int           `mapstructure:"max_attempts"`
	GroupID         string        `mapstructure:"group_id"`
	RequestTopic    string        `mapstructure:"request_topic"`
	DeadLetterTopic string        `mapstructure:"dead_letter_topic"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryBackoff    time.Duration `mapstructure:"retry_backoff"`
}

// MetricsConfig holds Prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Subsystem string `mapstructure:"subsystem"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.  Every infrastructure component
// and application service reads its settings from the relevant sub-struct.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Combiner CombinerConfig `mapstructure:"combiner"`
	Redis    RedisConfig    `mapstructure:"redis"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// Sections that are disabled are not checked.  The first error encountered is
// returned.
func (c *Config) Validate() error {
	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be >= 0, got %v", c.Server.RateLimitRPS)
	}
	if c.Server.GenerateTimeout < 0 {
		return fmt.Errorf("config: server.generate_timeout must be >= 0, got %v", c.Server.GenerateTimeout)
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	// Combiner
	if c.Combiner.NConnect < 0 {
		return fmt.Errorf("config: combiner.nconnect must be ≥ 0, got %d", c.Combiner.NConnect)
	}
	if c.Combiner.ConnectAtom == "" {
		return fmt.Errorf("config: combiner.connect_atom is required")
	}
	if c.Combiner.OutputDir == "" {
		return fmt.Errorf("config: combiner.output_dir is required")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required when minio is enabled")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required when minio is enabled")
		}
	}

	// Postgres
	if c.Postgres.Enabled {
		if c.Postgres.Host == "" {
			return fmt.Errorf("config: postgres.host is required when postgres is enabled")
		}
		if c.Postgres.Port < 1 || c.Postgres.Port > 65535 {
			return fmt.Errorf("config: postgres.port %d is out of range [1, 65535]", c.Postgres.Port)
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("config: postgres.user is required when postgres is enabled")
		}
		if c.Postgres.DBName == "" {
			return fmt.Errorf("config: postgres.db_name is required when postgres is enabled")
		}
		if c.Postgres.MaxConns < 1 {
			return fmt.Errorf("config: postgres.max_conns must be ≥ 1, got %d", c.Postgres.MaxConns)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
		switch c.Kafka.RequiredAcks {
		case -1, 0, 1:
		default:
			return fmt.Errorf("config: kafka.required_acks %d is invalid; expected -1|0|1", c.Kafka.RequiredAcks)
		}
		if c.Kafka.MaxRetries < 0 {
			return fmt.Errorf("config: kafka.max_retries must be >= 0, got %d", c.Kafka.MaxRetries)
		}
	}

	// Metrics
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with '/'", c.Metrics.Path)
	}

	return nil
}

//Personal.AI order the ending
