package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults from empty viper", func(t *testing.T) {
		cfg, err := load(&configOptions{}, viper.New())

		require.NoError(t, err)
		assert.False(t, cfg.Tracing.Enabled)
		assert.False(t, cfg.Metrics.Enabled)
		assert.Equal(t, DefaultMetricsInterval, cfg.Metrics.Interval)
		assert.Equal(t, DefaultSampleRatio, cfg.Tracing.SampleRatio)
	})

	t.Run("reads viper values", func(t *testing.T) {
		v := viper.New()
		v.Set("observability.otel-collector-endpoint", "collector:4317")
		v.Set("observability.metrics.enabled", true)
		v.Set("observability.metrics.interval", "30s")
		v.Set("observability.tracing.enabled", true)
		v.Set("observability.tracing.sample-ratio", 0.25)

		cfg, err := load(&configOptions{}, v)

		require.NoError(t, err)
		assert.Equal(t, "collector:4317", cfg.OtelCollectorEndpoint)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Metrics.Interval)
		assert.True(t, cfg.Tracing.Enabled)
		assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
	})

	t.Run("static config with disable options", func(t *testing.T) {
		opts := &configOptions{disableTracing: true, disableMetrics: true}
		WithConfig(Config{
			OtelCollectorEndpoint: "collector:4317",
			Tracing:               TracingConfig{Enabled: true},
			Metrics:               MetricsConfig{Enabled: true},
		})(opts)

		cfg, err := load(opts, viper.New())

		require.NoError(t, err)
		assert.False(t, cfg.Tracing.Enabled)
		assert.False(t, cfg.Metrics.Enabled)
	})

	t.Run("metrics need an endpoint", func(t *testing.T) {
		v := viper.New()
		v.Set("observability.metrics.enabled", true)

		_, err := load(&configOptions{}, v)

		assert.Error(t, err)
	})

	t.Run("rejects sample ratio above one", func(t *testing.T) {
		v := viper.New()
		v.Set("observability.tracing.sample-ratio", 2.0)

		_, err := load(&configOptions{}, v)

		assert.Error(t, err)
	})
}
