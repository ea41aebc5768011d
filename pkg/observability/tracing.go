// Package observability provides OpenTelemetry tracing for tabula table
// operations. A Tracer implements table.Observer and turns every completed
// operation into a span carrying its row, column and group counts.
package observability

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/table"
)

// InstrumentationName identifies spans emitted by this package
const InstrumentationName = "github.com/ajitpratap0/tabula/pkg/table"

// Tracer records table operations as spans. Operations are synchronous and
// report after completion, so spans are back-dated to the event start.
type Tracer struct {
	ctx    context.Context
	tracer trace.Tracer
}

// NewTracer creates a Tracer using provider. Spans become children of any
// span active in ctx.
func NewTracer(ctx context.Context, provider trace.TracerProvider) *Tracer {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Tracer{ctx: ctx, tracer: provider.Tracer(InstrumentationName)}
}

// OnOperation implements table.Observer
func (t *Tracer) OnOperation(ev table.Event) {
	attrs := []attribute.KeyValue{
		attribute.Int("tabula.input_rows", ev.InputRows),
		attribute.Int("tabula.output_rows", ev.OutputRows),
		attribute.Int("tabula.columns", ev.Columns),
	}
	if ev.Groups > 0 {
		attrs = append(attrs, attribute.Int("tabula.groups", ev.Groups))
	}
	if ev.JoinType != "" {
		attrs = append(attrs, attribute.String("tabula.join_type", ev.JoinType))
	}
	if js := ev.Join; js != nil {
		attrs = append(attrs,
			attribute.Int("tabula.join.matches", js.Matches),
			attribute.Int("tabula.join.null_key_rows", js.NullKeyRows),
			attribute.Int("tabula.join.unmatched_left", js.UnmatchedLeft),
			attribute.Int("tabula.join.unmatched_right", js.UnmatchedRight),
		)
	}

	_, span := t.tracer.Start(t.ctx, "table."+string(ev.Op),
		trace.WithTimestamp(ev.Start),
		trace.WithAttributes(attrs...),
	)
	if ev.Err != nil {
		span.RecordError(ev.Err)
		span.SetStatus(codes.Error, ev.Err.Error())
		if errType := errors.TypeOf(ev.Err); errType != "" {
			span.SetAttributes(attribute.String("tabula.error_type", string(errType)))
		}
	}
	span.End(trace.WithTimestamp(ev.Start.Add(ev.Duration)))
}

// NewStdoutProvider builds a tracer provider exporting spans as JSON to w,
// sampling every span. Callers must Shutdown the provider to flush.
func NewStdoutProvider(serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create stdout exporter")
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
	), nil
}
