package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromEnv_Defaults(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	s := SettingsFromEnv()

	assert.False(t, s.Enabled)
	assert.Equal(t, "localhost:4318", s.Endpoint)
	assert.Equal(t, "kisan-advisory-be", s.ServiceName)
	assert.Equal(t, 1.0, s.SampleRatio)
}

func TestSettingsFromEnv_Overrides(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SERVICE_NAME", "kisan-advisory-worker")

	s := SettingsFromEnv()

	assert.True(t, s.Enabled)
	assert.Equal(t, "collector:4318", s.Endpoint)
	assert.Equal(t, "kisan-advisory-worker", s.ServiceName)
}

func TestInit_DisabledIsNoop(t *testing.T) {
	shutdown := Init(Settings{Enabled: false})
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}
