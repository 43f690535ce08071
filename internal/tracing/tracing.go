// Package tracing installs the OpenTelemetry tracer provider for the host.
// Spans cover operator actions such as console commands; the frame loop is
// not traced.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// ServiceName is reported as the service.name resource attribute.
const ServiceName = "midgard-daynight"

var newExporter = func(w io.Writer) (sdktrace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithWriter(w))
}

// Config governs tracer setup.
type Config struct {
	Enabled bool
	// File receives the spans as JSON. Empty writes to stderr, since stdout
	// belongs to the console.
	File string
}

// Init installs a global tracer provider and returns a shutdown function that
// flushes pending spans.
func Init(ctx context.Context, cfg Config, log *zap.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Enabled {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Debug("tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", ServiceName),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening trace file: %w", err)
		}
		w, closer = f, f
	}

	exp, err := newExporter(w)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info("tracing enabled", zap.String("file", cfg.File))

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// ShutdownWithTimeout runs shutdown with a bounded timeout and logs failures.
func ShutdownWithTimeout(shutdown func(context.Context) error, log *zap.Logger) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil && log != nil {
		log.Warn("tracing shutdown failed", zap.Error(err))
	}
}
