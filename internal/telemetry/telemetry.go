// Package telemetry configures OpenTelemetry trace export.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"bugscape/internal/logging"
)

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup installs a global tracer provider exporting to endpoint over OTLP/gRPC.
// An empty endpoint disables tracing. Export failures never stop the service.
func Setup(ctx context.Context, serviceName, endpoint string, insecure bool, logger logging.Logger) ShutdownFunc {
	if endpoint == "" {
		return noop
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		logger.Warn(ctx, "otel exporter unavailable", "endpoint", endpoint, "error", err)
		return noop
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		logger.Warn(ctx, "otel resource incomplete", "error", err)
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
	)
	otel.SetTracerProvider(provider)
	logger.Info(ctx, "tracing enabled", "endpoint", endpoint, "service", serviceName)

	return provider.Shutdown
}
