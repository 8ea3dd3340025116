package main

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	sentryotel "github.com/getsentry/sentry-go/otel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/baseswapfi/sor/domain"
)

const sentryFlushTimeout = 2 * time.Second

// tracedEndpoints maps the sampled endpoints to their configured sample rate.
// Spans of any other endpoint are dropped.
func tracedEndpoints(config *domain.OTELConfig) map[string]float64 {
	return map[string]float64{
		"/router/quote": config.QuoteSampleRate,
	}
}

// newTracesSampler samples spans named after a traced endpoint.
func newTracesSampler(rates map[string]float64) sentry.TracesSampler {
	return func(ctx sentry.SamplingContext) float64 {
		if ctx.Span == nil {
			return 0
		}
		return rates[ctx.Span.Name]
	}
}

// initTelemetry sets up sentry error reporting and the otel tracer provider exporting to it.
// The returned function flushes pending events and stops the tracer provider.
func initTelemetry(config *domain.OTELConfig, hostName string, isDebug bool) (func(context.Context), error) {
	err := sentry.Init(sentry.ClientOptions{
		ServerName:         hostName,
		Dsn:                config.DSN,
		SampleRate:         config.SampleRate,
		EnableTracing:      config.EnableTracing,
		Debug:              isDebug,
		TracesSampler:      newTracesSampler(tracedEndpoints(config)),
		ProfilesSampleRate: config.ProfilesSampleRate,
		Environment:        config.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry init: %w", err)
	}

	tracerProvider, err := newTracerProvider(hostName)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(sentryotel.NewSentryPropagator())

	sentry.CaptureMessage("SOR started")

	return func(ctx context.Context) {
		_ = tracerProvider.Shutdown(ctx)
		sentry.Flush(sentryFlushTimeout)
	}, nil
}

func newTracerProvider(hostName string) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("stdouttrace exporter: %w", err)
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(hostName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sentryotel.NewSentrySpanProcessor()),
	), nil
}
