package cli

import (
	"context"

	"github.com/turtacn/smilescombine/internal/application/library"
	"github.com/turtacn/smilescombine/internal/chem/smiles"
	"github.com/turtacn/smilescombine/internal/config"
	"github.com/turtacn/smilescombine/internal/domain/combiner"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/postgres"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/smilescombine/internal/infrastructure/database/redis"
	"github.com/turtacn/smilescombine/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/smilescombine/internal/infrastructure/storage/minio"
	"github.com/turtacn/smilescombine/internal/interfaces/http/handlers"
)

// app holds the wired service and the infrastructure behind it.  Every
// backend is optional and enabled from its config section.
type app struct {
	cfg    *config.Config
	logger logging.Logger

	engine    combiner.Engine
	service   library.Service
	metrics   *prometheus.AppMetrics
	collector prometheus.MetricsCollector
	producer  *kafka.Producer
	checks    []handlers.HealthChecker

	closers []func()
}

type appOptions struct {
	// metrics creates the Prometheus registry; only long-running commands
	// expose it.
	metrics bool
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, opts appOptions) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	if err := a.init(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) init(ctx context.Context, opts appOptions) error {
	cfg, logger := a.cfg, a.logger
	var err error

	if opts.metrics && cfg.Metrics.Enabled {
		a.collector, err = prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			Subsystem:            cfg.Metrics.Subsystem,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return err
		}
		a.metrics = prometheus.NewAppMetrics(a.collector)
	}

	deps := library.Deps{Logger: logger}
	if a.metrics != nil {
		deps.Metrics = a.metrics
	}

	var engine combiner.Engine = smiles.NewEngine()
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(redisConfig(cfg.Redis), logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.checks = append(a.checks, handlers.NewCheck("redis", client.Ping))

		cache := redis.NewRedisCache(client, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
		cacheOpts := []redis.CachedEngineOption{redis.WithEntryTTL(cfg.Redis.DefaultTTL)}
		if a.metrics != nil {
			cacheOpts = append(cacheOpts, redis.WithObserver(a.metrics))
		}
		engine = redis.NewCachedEngine(engine, cache, logger, cacheOpts...)
		deps.Locker = redis.NewLocker(client, cfg.Redis.KeyPrefix, logger)
	}
	a.engine = engine
	deps.Engine = engine

	if cfg.Postgres.Enabled {
		conn, err := postgres.NewConnection(ctx, postgresConfig(cfg.Postgres), logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, conn.Close)
		a.checks = append(a.checks, handlers.NewCheck("postgres", conn.HealthCheck))
		if cfg.Postgres.AutoMigrate {
			if err := postgres.RunMigrations(conn.ConnString()); err != nil {
				return err
			}
		}
		deps.Runs = repositories.NewRunRepository(conn.Pool(), logger)
	}

	if cfg.MinIO.Enabled {
		client, err := minio.NewClient(ctx, minioConfig(cfg.MinIO), logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.checks = append(a.checks, handlers.NewCheck("minio", client.HealthCheck))
		deps.Artifacts = minio.NewArtifactStore(client, logger)
	}

	if cfg.Kafka.Enabled {
		a.producer, err = kafka.NewProducer(producerConfig(cfg.Kafka), logger)
		if err != nil {
			return err
		}
		producer := a.producer
		a.closers = append(a.closers, func() { _ = producer.Close() })
		deps.Events = kafka.NewLibraryEventPublisher(producer, cfg.Kafka.Topic, logger)
	}

	a.service, err = library.NewService(cfg.Combiner, deps)
	return err
}

// Close releases backends in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func redisConfig(c config.RedisConfig) *redis.Config {
	return &redis.Config{
		Addr:         c.Addr,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

func postgresConfig(c config.PostgresConfig) postgres.Config {
	return postgres.Config{
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		DBName:          c.DBName,
		SSLMode:         c.SSLMode,
		MaxConns:        c.MaxConns,
		MinConns:        c.MinConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
	}
}

func minioConfig(c config.MinIOConfig) *minio.Config {
	return &minio.Config{
		Endpoint:        c.Endpoint,
		AccessKeyID:     c.AccessKey,
		SecretAccessKey: c.SecretKey,
		UseSSL:          c.UseSSL,
		Region:          c.Region,
		Bucket:          c.Bucket,
		ObjectPrefix:    c.ObjectPrefix,
	}
}

func producerConfig(c config.KafkaConfig) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:      c.Brokers,
		RequiredAcks: c.RequiredAcks,
		MaxAttempts:  c.MaxAttempts,
		BatchSize:    c.BatchSize,
		BatchTimeout: c.BatchTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

func consumerConfig(c config.KafkaConfig) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers: c.Brokers,
		GroupID: c.GroupID,
		Topic:   c.RequestTopic,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      c.MaxRetries,
			RetryBackoff:    c.RetryBackoff,
			DeadLetterTopic: c.DeadLetterTopic,
		},
	}
}

//Personal.AI order the ending
