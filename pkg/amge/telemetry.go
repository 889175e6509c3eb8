package amge

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "k3l.io/go-amge/pkg/amge"

type telemetry struct {
	tracer       trace.Tracer
	agglomerates metric.Int64Counter
	coarseRows   metric.Int64Counter
	truncated    metric.Int64Counter
}

func newTelemetry(
	tp trace.TracerProvider, mp metric.MeterProvider,
) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)
	t := &telemetry{tracer: tp.Tracer(instrumentationName)}
	var err error
	t.agglomerates, err = meter.Int64Counter("amge.agglomerates",
		metric.WithDescription("Agglomerates whose local basis was computed"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create agglomerates counter")
	}
	t.coarseRows, err = meter.Int64Counter("amge.coarse_rows",
		metric.WithDescription("Coarse rows assembled into restriction matrices"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create coarse rows counter")
	}
	t.truncated, err = meter.Int64Counter("amge.truncated_agglomerates",
		metric.WithDescription("Agglomerates that yielded fewer eigenvectors than requested"))
	if err != nil {
		return nil, errors.Wrap(err, "cannot create truncation counter")
	}
	return t, nil
}

func defaultTelemetry() *telemetry {
	t, err := newTelemetry(nil, nil)
	if err != nil {
		// the global providers only fail on invalid instrument names
		panic(err)
	}
	return t
}

func (t *telemetry) start(
	ctx context.Context, name string, rank int,
) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name,
		trace.WithAttributes(attribute.Int("rank", rank)))
}

// endSpan records err (if any) on the span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func rankAttr(rank int) metric.AddOption {
	return metric.WithAttributes(attribute.Int("rank", rank))
}
