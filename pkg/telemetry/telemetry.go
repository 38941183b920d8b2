// Package telemetry installs the global OpenTelemetry tracer and logger
// providers that the worker clients, the stream reader and the logger
// bridge report to.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	// ExporterNone leaves the global no-op providers in place.
	ExporterNone = "none"

	// ExporterStdout writes spans and log records as JSON to a writer.
	ExporterStdout = "stdout"

	// ExporterOTLP ships spans and log records to an OTLP/HTTP collector.
	ExporterOTLP = "otlp"

	serviceName = "skillstream"
)

// ErrUnknownExporter is returned by Setup for an unsupported exporter name.
var ErrUnknownExporter = errors.New("unknown telemetry exporter")

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// SetupOpts configures Setup.
type SetupOpts struct {
	// Exporter is "none" (default), "stdout" or "otlp".
	Exporter string

	// Endpoint is the OTLP/HTTP base URL (e.g. "http://localhost:4318").
	// Empty uses the OTEL_EXPORTER_OTLP_* environment or the SDK default.
	Endpoint string

	// Writer receives stdout exporter output. Defaults to os.Stderr.
	Writer io.Writer

	// Version is reported as service.version.
	Version string
}

// Setup builds tracer and logger providers for the configured exporter and
// installs them globally. The returned ShutdownFunc is never nil.
func Setup(ctx context.Context, opts SetupOpts) (ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	var (
		spanExporter sdktrace.SpanExporter
		logExporter  sdklog.Exporter
		err          error
	)

	switch opts.Exporter {
	case "", ExporterNone:
		return noop, nil

	case ExporterStdout:
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return noop, fmt.Errorf("creating stdout span exporter: %w", err)
		}
		logExporter, err = stdoutlog.New(stdoutlog.WithWriter(w))
		if err != nil {
			return noop, fmt.Errorf("creating stdout log exporter: %w", err)
		}

	case ExporterOTLP:
		var traceOpts []otlptracehttp.Option
		var logOpts []otlploghttp.Option
		if opts.Endpoint != "" {
			traceOpts = append(traceOpts, otlptracehttp.WithEndpointURL(opts.Endpoint+"/v1/traces"))
			logOpts = append(logOpts, otlploghttp.WithEndpointURL(opts.Endpoint+"/v1/logs"))
		}
		spanExporter, err = otlptracehttp.New(ctx, traceOpts...)
		if err != nil {
			return noop, fmt.Errorf("creating otlp span exporter: %w", err)
		}
		logExporter, err = otlploghttp.New(ctx, logOpts...)
		if err != nil {
			return noop, fmt.Errorf("creating otlp log exporter: %w", err)
		}

	default:
		return noop, fmt.Errorf("%w: %q (available: none, stdout, otlp)", ErrUnknownExporter, opts.Exporter)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", opts.Version),
	)

	// Export synchronously: a failed command exits before a batch timer fires.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(spanExporter),
		sdktrace.WithResource(res),
	)
	lp := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewSimpleProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	global.SetLoggerProvider(lp)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), lp.Shutdown(ctx))
	}, nil
}
