// Package depotrace wraps the otel tracer used by the account and pipeline
// layers, one span per operation, the same granularity the audit component
// traces its use cases at.
package depotrace

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/blockchaincommons/go-depo"

var tracer = otel.Tracer(instrumentationName)

// Start opens a span named name and returns the derived context alongside
// it. Callers defer span.End().
func Start(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

// HandleSpanError marks span as failed with message and records err, without
// altering the error returned to the caller.
func HandleSpanError(span trace.Span, message string, err error) {
	if err == nil {
		return
	}

	span.SetStatus(codes.Error, message+": "+err.Error())
	span.RecordError(err)
}
