package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInitOTel_Disabled(t *testing.T) {
	providers, err := InitOTel(context.Background(), OTelConfig{Enabled: false}, NewLogger(InfoLevel, &bytes.Buffer{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if providers != nil {
		t.Error("Expected nil providers when disabled")
	}

	if err := ShutdownOTel(context.Background(), nil, NewLogger(InfoLevel, &bytes.Buffer{})); err != nil {
		t.Errorf("Shutdown of nil providers should succeed: %v", err)
	}
}

func TestUpdateLoggerWithTraceContext(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	var buf bytes.Buffer
	UpdateLoggerWithTraceContext(ctx, NewLogger(InfoLevel, &buf)).Info("traced")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["trace_id"] != span.SpanContext().TraceID().String() {
		t.Errorf("Expected trace_id %s, got %v", span.SpanContext().TraceID(), entry["trace_id"])
	}
	if entry["span_id"] != span.SpanContext().SpanID().String() {
		t.Errorf("Expected span_id %s, got %v", span.SpanContext().SpanID(), entry["span_id"])
	}
}

func TestShutdownOTel(t *testing.T) {
	providers := &OTelProviders{TracerProvider: sdktrace.NewTracerProvider()}
	if err := ShutdownOTel(context.Background(), providers, NewLogger(InfoLevel, &bytes.Buffer{})); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
