package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/smilescombine/internal/config"
	"github.com/turtacn/smilescombine/internal/infrastructure/monitoring/logging"
)

func TestNewApp_DefaultsOnly(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Combiner.OutputDir = t.TempDir()

	a, err := newApp(context.Background(), cfg, logging.NewNopLogger(), appOptions{metrics: true})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.service)
	assert.NotNil(t, a.metrics)
	assert.NotNil(t, a.collector)
	assert.Nil(t, a.producer)
	assert.Empty(t, a.checks)

	rc := a.routerConfig()
	assert.NotNil(t, rc.HealthHandler)
	assert.Equal(t, "/metrics", rc.MetricsPath)
}

func TestNewApp_NoMetricsForOneShotCommands(t *testing.T) {
	cfg := config.NewDefaultConfig()
	a, err := newApp(context.Background(), cfg, logging.NewNopLogger(), appOptions{})
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.metrics)
}

func TestConfigMapping(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Redis.Addr = "redis:6379"
	cfg.Redis.DB = 2
	cfg.MinIO.AccessKey = "ak"
	cfg.MinIO.SecretKey = "sk"
	cfg.Postgres.Host = "db"
	cfg.Kafka.Brokers = []string{"k1:9092", "k2:9092"}
	cfg.Kafka.MaxRetries = 5
	cfg.Kafka.RetryBackoff = 2 * time.Second

	r := redisConfig(cfg.Redis)
	assert.Equal(t, "redis:6379", r.Addr)
	assert.Equal(t, 2, r.DB)

	m := minioConfig(cfg.MinIO)
	assert.Equal(t, "ak", m.AccessKeyID)
	assert.Equal(t, "sk", m.SecretAccessKey)
	assert.Equal(t, cfg.MinIO.Bucket, m.Bucket)

	p := postgresConfig(cfg.Postgres)
	assert.Equal(t, "db", p.Host)
	assert.Equal(t, cfg.Postgres.MaxConns, p.MaxConns)

	pc := producerConfig(cfg.Kafka)
	assert.Equal(t, cfg.Kafka.Brokers, pc.Brokers)
	assert.Equal(t, cfg.Kafka.RequiredAcks, pc.RequiredAcks)

	cc := consumerConfig(cfg.Kafka)
	assert.Equal(t, cfg.Kafka.RequestTopic, cc.Topic)
	assert.Equal(t, cfg.Kafka.GroupID, cc.GroupID)
	assert.Equal(t, 5, cc.RetryConfig.MaxRetries)
	assert.Equal(t, 2*time.Second, cc.RetryConfig.RetryBackoff)
	assert.Equal(t, cfg.Kafka.DeadLetterTopic, cc.RetryConfig.DeadLetterTopic)

	cfg.Combiner.NMax = 2
	sl := syncLimits(cfg)
	assert.Equal(t, config.DefaultServerMaxNMax, sl.MaxNMax)
	assert.Equal(t, 2, sl.DefaultNMax)
	assert.Equal(t, config.DefaultServerGenerateTimeout, sl.Timeout)
}

//Personal.AI order the ending
