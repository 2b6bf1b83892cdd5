package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platinummonkey/vortex-bridge/pkg/config"
)

func TestServe_SetupFailureSkipsTracing(t *testing.T) {
	t.Setenv("BRIDGE_OTEL_ENABLED", "true")
	t.Setenv("BRIDGE_METRICS_ENABLED", "false")
	t.Setenv("BRIDGE_SESSION_SWEEP", "not a schedule")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	err = serve(context.Background(), cfg)
	require.Error(t, err)

	_, installed := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.False(t, installed, "tracer provider installed despite failed setup")
}
