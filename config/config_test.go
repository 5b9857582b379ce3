package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("REPORT_WINDOW_DAYS", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 7, cfg.Business.ReportWindowDays)
	assert.Equal(t, 12*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 1.0, cfg.Observ.TraceSampleRatio)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TOP_PRODUCTS_LIMIT", "10")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "not-a-number")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 10, cfg.Business.TopProducts)
	assert.Equal(t, 300*time.Second, cfg.Business.CatalogCacheTTL)
	assert.Equal(t, 0.25, cfg.Observ.TraceSampleRatio)
	assert.Equal(t, "debug", cfg.Observ.LogLevel)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	b := BusinessConfig{Timezone: "Nowhere/Atlantis"}
	assert.Equal(t, time.UTC, b.Location())

	b.Timezone = "UTC"
	assert.Equal(t, "UTC", b.Location().String())
}
