// Package tracer wires OpenTelemetry for the advisory service. Spans come from
// otelfiber on the webhook routes and from the pipeline stages.
package tracer

import (
	"context"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	defaultServiceName = "kisan-advisory-be"
	defaultEndpoint    = "localhost:4318"
)

// Settings is read from the OTEL_* environment.
type Settings struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	// SampleRatio below 1 keeps only a share of the advisory runs.
	SampleRatio float64
}

func SettingsFromEnv() Settings {
	s := Settings{
		Enabled:     os.Getenv("OTEL_ENABLED") == "true",
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: os.Getenv("OTEL_SERVICE_NAME"),
		SampleRatio: 1,
	}
	if s.Endpoint == "" {
		s.Endpoint = defaultEndpoint
	}
	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}
	return s
}

func noop(context.Context) error { return nil }

// InitTracer installs the global tracer provider. Tracing stays off unless
// OTEL_ENABLED=true; the returned shutdown flushes pending spans.
func InitTracer() func(context.Context) error {
	return Init(SettingsFromEnv())
}

func Init(s Settings) func(context.Context) error {
	if !s.Enabled {
		log.Println("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(s.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("Warning: Failed to create OTLP exporter: %v (tracing disabled)", err)
		return noop
	}

	sampler := sdktrace.AlwaysSample()
	if s.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(s.ServiceName),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Printf("OpenTelemetry tracer initialized for %s (endpoint: %s)", s.ServiceName, s.Endpoint)

	return tp.Shutdown
}
