package telemetry

import (
	"context"
	"testing"

	"github.com/mx-space/journal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func TestInitWithoutExporter(t *testing.T) {
	shutdown, err := Init(context.Background(), zap.NewNop(), config.TelemetryConfig{
		Exporter:    "none",
		ServiceName: "journal-test",
	}, "test")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	assert.NoError(t, shutdown(context.Background()))
}

func TestInitStdoutExporter(t *testing.T) {
	shutdown, err := Init(context.Background(), nil, config.TelemetryConfig{
		Exporter:    "stdout",
		ServiceName: "journal-test",
	}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
