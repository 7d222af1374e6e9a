package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data", cfg.DataDir)
	assert.Empty(t, cfg.OutputDir)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 10, cfg.GumbelMinYears)
	assert.Equal(t, 20, cfg.DirectionBinWidth)
	assert.False(t, cfg.XLSXEnabled)
	assert.False(t, cfg.ParquetEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "wind-analysis-requests", cfg.KafkaRequestTopic)
	assert.Equal(t, "wind-analysis-results", cfg.KafkaResultTopic)
	assert.Equal(t, "wind-stats", cfg.KafkaGroupID)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/wind")
	t.Setenv("OUTPUT_DIR", "/srv/out")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("GUMBEL_MIN_YEARS", "15")
	t.Setenv("DIRECTION_BIN_WIDTH", "30")
	t.Setenv("XLSX_ENABLED", "true")
	t.Setenv("PARQUET_ENABLED", "1")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REQUEST_TOPIC", "custom-requests")
	t.Setenv("KAFKA_RESULT_TOPIC", "custom-results")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/wind", cfg.DataDir)
	assert.Equal(t, "/srv/out", cfg.OutputDir)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, 15, cfg.GumbelMinYears)
	assert.Equal(t, 30, cfg.DirectionBinWidth)
	assert.True(t, cfg.XLSXEnabled)
	assert.True(t, cfg.ParquetEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-requests", cfg.KafkaRequestTopic)
	assert.Equal(t, "custom-results", cfg.KafkaResultTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
		{"SHUTDOWN_TIMEOUT", "-1s"},
		{"BATCH_SIZE", "0"},
		{"BATCH_SIZE", "9999"},
		{"BATCH_FLUSH_INTERVAL", "not-a-duration"},
		{"GUMBEL_MIN_YEARS", "1"},
		{"GUMBEL_MIN_YEARS", "ten"},
		{"DIRECTION_BIN_WIDTH", "7"},
		{"DIRECTION_BIN_WIDTH", "0"},
		{"LOG_LEVEL", "verbose"},
		{"LOG_FORMAT", "xml"},
		{"XLSX_ENABLED", "maybe"},
		{"PARQUET_ENABLED", "perhaps"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
