package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/self-checkout/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log      config.Log
		HTTP     config.HTTP
		Detector config.Detector
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		t.Setenv("DETECTOR_INFERENCE_URL", "http://yolo:5000/predict")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8080), cfg.HTTP.Port)
		assert.Equal(t, []string{"*"}, cfg.HTTP.CorsAllowedOrigins)
		assert.Equal(t, int64(32<<20), cfg.HTTP.MaxUploadSize)
		assert.Equal(t, 10*time.Second, cfg.Detector.Timeout)
		assert.Equal(t, uint(2), cfg.Detector.MaxRetries)
	})

	t.Run("Should read overrides", func(t *testing.T) {
		t.Setenv("DETECTOR_INFERENCE_URL", "http://yolo:5000/predict")
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("DETECTOR_TIMEOUT", "3s")
		t.Setenv("HTTP_CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, 3*time.Second, cfg.Detector.Timeout)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.HTTP.CorsAllowedOrigins)
	})

	t.Run("Should fail without required variables", func(t *testing.T) {
		t.Setenv("DETECTOR_INFERENCE_URL", "")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should reject unknown log format", func(t *testing.T) {
		t.Setenv("DETECTOR_INFERENCE_URL", "http://yolo:5000/predict")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should reject out of range detector settings", func(t *testing.T) {
		t.Setenv("DETECTOR_INFERENCE_URL", "http://yolo:5000/predict")
		t.Setenv("DETECTOR_MIN_CONFIDENCE", "1.5")
		t.Setenv("DETECTOR_JPEG_QUALITY", "0")

		_, err := config.New[Config]()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Detector")
		assert.Contains(t, err.Error(), "DETECTOR_MIN_CONFIDENCE")
		assert.Contains(t, err.Error(), "DETECTOR_JPEG_QUALITY")
	})
}

func TestOtelValidate(t *testing.T) {
	assert.NoError(t, (&config.Otel{TraceIDRatio: 0.1}).Validate())
	assert.Error(t, (&config.Otel{TraceIDRatio: 1.5}).Validate())
	assert.Error(t, (&config.Otel{TraceIDRatio: -0.1}).Validate())
}

func TestPostgresValidate(t *testing.T) {
	valid := config.Postgres{MaxConns: 10, MinConns: 1, ConnectTimeout: 5 * time.Second}
	assert.NoError(t, valid.Validate())

	t.Run("Should reject more idle than max connections", func(t *testing.T) {
		cfg := valid
		cfg.MinConns = 11
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_MIN_CONNS")
	})

	t.Run("Should reject a zero connect timeout", func(t *testing.T) {
		cfg := valid
		cfg.ConnectTimeout = 0
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_CONNECT_TIMEOUT")
	})

	t.Run("Should be checked by New", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "localhost")
		t.Setenv("POSTGRES_USER", "checkout")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "selfcheckout")
		t.Setenv("POSTGRES_MAX_CONNS", "2")
		t.Setenv("POSTGRES_MIN_CONNS", "3")

		_, err := config.New[struct{ Postgres config.Postgres }]()
		assert.ErrorContains(t, err, "POSTGRES_MIN_CONNS")
	})
}
