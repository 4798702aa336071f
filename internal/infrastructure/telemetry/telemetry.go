// Package telemetry wires OpenTelemetry traces, metrics and logs, plus
// Pyroscope continuous profiling. Every provider degrades to a no-op when
// its section is disabled, so callers never branch on configuration.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Collector identifies the OTLP gRPC endpoint all signals are shipped to
// and the service they are attributed to.
type Collector struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

func (c Collector) resource() (*resource.Resource, error) {
	version := c.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}
	return res, nil
}

func (c Collector) fields(signal string) []zap.Field {
	return []zap.Field{
		zap.String("signal", signal),
		zap.String("collector_endpoint", c.Endpoint),
		zap.String("service_name", c.ServiceName),
	}
}

// flusher is satisfied by the SDK trace, metric and log providers.
type flusher interface {
	Shutdown(ctx context.Context) error
}

// shutdownSignal stops one SDK provider, bounded by shutdownTimeout.
func shutdownSignal(ctx context.Context, signal string, p flusher, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := p.Shutdown(ctx); err != nil {
		log.Error("Telemetry provider shutdown failed", zap.String("signal", signal), zap.Error(err))
		return fmt.Errorf("telemetry: shutdown %s provider: %w", signal, err)
	}
	log.Info("Telemetry provider stopped", zap.String("signal", signal))
	return nil
}
