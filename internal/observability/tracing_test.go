package observability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

func TestSetupTracingDisabledIsNoop(t *testing.T) {
	cases := []Config{
		{},
		{OTelEnabled: true},
		{OTelEndpoint: "http://localhost:4318"},
	}
	for _, cfg := range cases {
		shutdown, err := SetupTracing(context.Background(), "bossfight-test", cfg)
		if err != nil {
			t.Fatalf("SetupTracing(%+v) failed: %v", cfg, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("noop shutdown failed: %v", err)
		}
	}
}

func TestTraceIDUsesSpanContext(t *testing.T) {
	traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  trace.SpanID{0x01},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	if got := TraceID(ctx); got != traceID.String() {
		t.Fatalf("expected %s, got %s", traceID.String(), got)
	}
}

func TestTraceIDFallsBackToUUID(t *testing.T) {
	first := TraceID(context.Background())
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected uuid, got %q: %v", first, err)
	}
	if second := TraceID(context.Background()); second == first {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}
