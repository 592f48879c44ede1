package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// TracingConfig controls OpenTelemetry tracing for one evaluation engine
// instance.
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	Insecure     bool
	ServiceName  string
}

// InitTracing configures an OTLP trace exporter and installs it as the
// global tracer provider. It returns a shutdown func; when tracing is
// disabled or unconfigured it returns a no-op shutdown so callers can defer
// it unconditionally.
func InitTracing(ctx context.Context, cfg TracingConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled || cfg.OTLPEndpoint == "" {
		return noop, nil
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ragas-engine"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			attribute.String("component", "evaluation-engine"),
		),
	)
	if err != nil {
		return noop, fmt.Errorf("observability: init resource: %w", err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noop, fmt.Errorf("observability: init trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
