package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 30 * time.Second
	DefaultServerWriteTimeout    = 5 * time.Minute
	DefaultServerMaxBodySize     = 1 << 20
	DefaultServerShutdownTimeout = 30 * time.Second
	DefaultServerRateLimitBurst  = 10
	DefaultServerMaxNMax         = 4
	DefaultServerGenerateTimeout = 4 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultNMax          = -1
	DefaultNConnect      = 0
	DefaultConnectAtom   = "Br"
	DefaultAutoPlacement = true
	DefaultOutputDir     = "."

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTimeout   = 3 * time.Second
	DefaultRedisTTL       = 24 * time.Hour
	DefaultRedisKeyPrefix = "smilescombine:"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "smiles-libraries"
	DefaultMinIORegion   = "us-east-1"
	DefaultMinIOPrefix   = "libraries/"

	DefaultPostgresHost     = "localhost"
	DefaultPostgresPort     = 5432
	DefaultPostgresUser     = "smilescombine"
	DefaultPostgresDBName   = "smilescombine"
	DefaultPostgresSSLMode  = "disable"
	DefaultPostgresMaxConns = 10
	DefaultPostgresLifetime = 30 * time.Minute

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopic        = "smilescombine.library.generated"
	DefaultKafkaBatchSize    = 100
	DefaultKafkaBatchTimeout = 10 * time.Millisecond
	DefaultKafkaWriteTimeout = 10 * time.Second
	DefaultKafkaRequiredAcks = -1
	DefaultKafkaMaxAttempts  = 3
	DefaultKafkaGroupID      = "smilescombine-workers"
	DefaultKafkaRequestTopic = "smilescombine.library.requested"
	DefaultKafkaDLQTopic     = "smilescombine.library.requested.dlq"
	DefaultKafkaMaxRetries   = 3
	DefaultKafkaRetryBackoff = time.Second

	DefaultMetricsNamespace = "smilescombine"
	DefaultMetricsPath      = "/metrics"
)

// NewDefaultConfig returns a Config populated entirely with defaults.  Every
// optional infrastructure section is disabled.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Combiner: CombinerConfig{
			NMax:          DefaultNMax,
			NConnect:      DefaultNConnect,
			AutoPlacement: DefaultAutoPlacement,
		},
		Log:      LogConfig{OutputPaths: []string{"stderr"}},
		Postgres: PostgresConfig{AutoMigrate: true},
		Kafka:    KafkaConfig{RequiredAcks: DefaultKafkaRequiredAcks, MaxRetries: DefaultKafkaMaxRetries},
		Metrics:  MetricsConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-value field in cfg for which zero is never
// a meaningful setting.  Explicit values are left unchanged.  Fields whose
// zero value is meaningful (combiner.nmax, combiner.auto_placement, enable
// flags) are defaulted through setViperDefaults instead.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultServerReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultServerWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultServerMaxBodySize
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultServerShutdownTimeout
	}
	if cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultServerRateLimitBurst
	}
	if cfg.Server.MaxNMax == 0 {
		cfg.Server.MaxNMax = DefaultServerMaxNMax
	}
	if cfg.Server.GenerateTimeout == 0 {
		cfg.Server.GenerateTimeout = DefaultServerGenerateTimeout
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Combiner ──────────────────────────────────────────────────────────────
	if cfg.Combiner.ConnectAtom == "" {
		cfg.Combiner.ConnectAtom = DefaultConnectAtom
	}
	if cfg.Combiner.OutputDir == "" {
		cfg.Combiner.OutputDir = DefaultOutputDir
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = DefaultRedisTimeout
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}
	if cfg.MinIO.ObjectPrefix == "" {
		cfg.MinIO.ObjectPrefix = DefaultMinIOPrefix
	}

	// ── Postgres ──────────────────────────────────────────────────────────────
	if cfg.Postgres.Host == "" {
		cfg.Postgres.Host = DefaultPostgresHost
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Postgres.User == "" {
		cfg.Postgres.User = DefaultPostgresUser
	}
	if cfg.Postgres.DBName == "" {
		cfg.Postgres.DBName = DefaultPostgresDBName
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Postgres.MaxConns == 0 {
		cfg.Postgres.MaxConns = DefaultPostgresMaxConns
	}
	if cfg.Postgres.ConnMaxLifetime == 0 {
		cfg.Postgres.ConnMaxLifetime = DefaultPostgresLifetime
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = DefaultKafkaBatchSize
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.RequestTopic == "" {
		cfg.Kafka.RequestTopic = DefaultKafkaRequestTopic
	}
	if cfg.Kafka.DeadLetterTopic == "" {
		cfg.Kafka.DeadLetterTopic = DefaultKafkaDLQTopic
	}
	if cfg.Kafka.RetryBackoff == 0 {
		cfg.Kafka.RetryBackoff = DefaultKafkaRetryBackoff
	}
	if cfg.Kafka.MaxAttempts == 0 {
		cfg.Kafka.MaxAttempts = DefaultKafkaMaxAttempts
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// setViperDefaults registers every key with viper so that SMILESCOMBINE_*
// environment variables are honoured by Unmarshal even without a config file.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	v.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	v.SetDefault("server.max_body_size", DefaultServerMaxBodySize)
	v.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", DefaultServerRateLimitBurst)
	v.SetDefault("server.max_nmax", DefaultServerMaxNMax)
	v.SetDefault("server.generate_timeout", DefaultServerGenerateTimeout)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
	v.SetDefault("log.output_paths", []string{"stderr"})

	v.SetDefault("combiner.nmax", DefaultNMax)
	v.SetDefault("combiner.nconnect", DefaultNConnect)
	v.SetDefault("combiner.connect_atom", DefaultConnectAtom)
	v.SetDefault("combiner.auto_placement", DefaultAutoPlacement)
	v.SetDefault("combiner.output_dir", DefaultOutputDir)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.dial_timeout", DefaultRedisTimeout)
	v.SetDefault("redis.read_timeout", DefaultRedisTimeout)
	v.SetDefault("redis.write_timeout", DefaultRedisTimeout)
	v.SetDefault("redis.default_ttl", DefaultRedisTTL)
	v.SetDefault("redis.key_prefix", DefaultRedisKeyPrefix)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
	v.SetDefault("minio.region", DefaultMinIORegion)
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.object_prefix", DefaultMinIOPrefix)

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", DefaultPostgresHost)
	v.SetDefault("postgres.port", DefaultPostgresPort)
	v.SetDefault("postgres.user", DefaultPostgresUser)
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.db_name", DefaultPostgresDBName)
	v.SetDefault("postgres.ssl_mode", DefaultPostgresSSLMode)
	v.SetDefault("postgres.max_conns", DefaultPostgresMaxConns)
	v.SetDefault("postgres.min_conns", 0)
	v.SetDefault("postgres.conn_max_lifetime", DefaultPostgresLifetime)
	v.SetDefault("postgres.auto_migrate", true)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.topic", DefaultKafkaTopic)
	v.SetDefault("kafka.batch_size", DefaultKafkaBatchSize)
	v.SetDefault("kafka.batch_timeout", DefaultKafkaBatchTimeout)
	v.SetDefault("kafka.write_timeout", DefaultKafkaWriteTimeout)
	v.SetDefault("kafka.required_acks", DefaultKafkaRequiredAcks)
	v.SetDefault("kafka.max_attempts", DefaultKafkaMaxAttempts)
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)
	v.SetDefault("kafka.request_topic", DefaultKafkaRequestTopic)
	v.SetDefault("kafka.dead_letter_topic", DefaultKafkaDLQTopic)
	v.SetDefault("kafka.max_retries", DefaultKafkaMaxRetries)
	v.SetDefault("kafka.retry_backoff", DefaultKafkaRetryBackoff)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.subsystem", "")
	v.SetDefault("metrics.path", DefaultMetricsPath)
}

//Personal.AI order the ending
