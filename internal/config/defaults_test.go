package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultServerMode, cfg.Server.Mode)
	assert.Equal(t, DefaultServerMaxNMax, cfg.Server.MaxNMax)
	assert.Equal(t, DefaultServerGenerateTimeout, cfg.Server.GenerateTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultConnectAtom, cfg.Combiner.ConnectAtom)
	assert.Equal(t, DefaultOutputDir, cfg.Combiner.OutputDir)
	assert.Equal(t, DefaultRedisTTL, cfg.Redis.DefaultTTL)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultKafkaRequestTopic, cfg.Kafka.RequestTopic)
	assert.Equal(t, DefaultKafkaDLQTopic, cfg.Kafka.DeadLetterTopic)
	assert.Equal(t, DefaultKafkaMaxRetries, cfg.Kafka.MaxRetries)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 9090, ReadTimeout: time.Second, MaxNMax: -1},
		Combiner: CombinerConfig{ConnectAtom: "I", NMax: 0},
	}
	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, -1, cfg.Server.MaxNMax)
	assert.Equal(t, "I", cfg.Combiner.ConnectAtom)
	assert.Equal(t, 0, cfg.Combiner.NMax)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.Equal(t, DefaultNMax, cfg.Combiner.NMax)
	assert.True(t, cfg.Combiner.AutoPlacement)
	assert.Equal(t, DefaultKafkaRequiredAcks, cfg.Kafka.RequiredAcks)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

//Personal.AI order the ending
