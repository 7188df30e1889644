// Package telemetry installs the OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

// Setup exports traces over OTLP/HTTP to endpoint and registers the provider
// globally. Tracing is opt-in: an empty endpoint returns a no-op Shutdown
// and leaves the global provider alone.
func Setup(ctx context.Context, service, version, endpoint string) (Shutdown, error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("otlp exporter: %w", err)
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter), resourceFor(service, version))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// NewProvider builds an always-sampling provider around the given span
// processor option.
func NewProvider(processor sdktrace.TracerProviderOption, res *resource.Resource) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
}

func resourceFor(service, version string) *resource.Resource {
	return resource.NewSchemaless(
		semconv.ServiceName(service),
		semconv.ServiceVersion(version),
	)
}
