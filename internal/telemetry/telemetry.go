// Package telemetry sets up OpenTelemetry tracing and metrics for the
// pipeline binaries. Spans and meters are exported over OTLP (gRPC or HTTP
// per configuration); when telemetry is disabled the no-op providers are
// installed instead.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	appconfig "github.com/tigerroll/standlake/internal/config"
	"github.com/tigerroll/standlake/pkg/util/logger"
)

// ServiceName identifies the pipeline in exported telemetry.
const ServiceName = "standlake"

// Providers bundles the tracer and meter providers together with their
// shutdown hooks.
type Providers struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider

	shutdownFuncs []func(context.Context) error
}

// Tracer returns the pipeline tracer.
func (p *Providers) Tracer() trace.Tracer {
	return p.TracerProvider.Tracer(ServiceName)
}

// Shutdown flushes and stops the providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	var lastErr error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			logger.Errorf("Telemetry shutdown error: %v", err)
			lastErr = err
		}
	}
	return lastErr
}

// New builds the telemetry providers from the configuration and installs
// them as the global OpenTelemetry providers.
func New(ctx context.Context, cfg *appconfig.Config) (*Providers, error) {
	tcfg := cfg.Standlake.Telemetry
	if !tcfg.Enabled {
		logger.Debugf("Telemetry disabled; installing no-op providers.")
		return &Providers{
			TracerProvider: tracenoop.NewTracerProvider(),
			MeterProvider:  metricnoop.NewMeterProvider(),
		}, nil
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
	)

	p := &Providers{}

	traceExporter, err := newTraceExporter(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	p.TracerProvider = tracerProvider
	p.shutdownFuncs = append(p.shutdownFuncs, tracerProvider.Shutdown)

	metricExporter, err := newMetricExporter(ctx, tcfg)
	if err != nil {
		return nil, err
	}
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
		sdkmetric.WithResource(res),
	)
	p.MeterProvider = meterProvider
	p.shutdownFuncs = append(p.shutdownFuncs, meterProvider.Shutdown)

	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)

	logger.Infof("Telemetry enabled; exporting over OTLP/%s to %s.", tcfg.Protocol, tcfg.Endpoint)
	return p, nil
}

func newTraceExporter(ctx context.Context, tcfg appconfig.TelemetryConfig) (sdktrace.SpanExporter, error) {
	switch tcfg.Protocol {
	case "grpc":
		return otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(tcfg.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
	case "http":
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(tcfg.Endpoint),
			otlptracehttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported telemetry protocol: %s", tcfg.Protocol)
	}
}

func newMetricExporter(ctx context.Context, tcfg appconfig.TelemetryConfig) (sdkmetric.Exporter, error) {
	switch tcfg.Protocol {
	case "grpc":
		return otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(tcfg.Endpoint),
			otlpmetricgrpc.WithInsecure(),
		)
	case "http":
		return otlpmetrichttp.New(ctx,
			otlpmetrichttp.WithEndpoint(tcfg.Endpoint),
			otlpmetrichttp.WithInsecure(),
		)
	default:
		return nil, fmt.Errorf("unsupported telemetry protocol: %s", tcfg.Protocol)
	}
}
