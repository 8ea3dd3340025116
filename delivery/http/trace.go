package http

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/baseswapfi/sor/domain"
)

// Span returns the request context and the span started by the tracing middleware.
func Span(c echo.Context) (context.Context, trace.Span) {
	ctx := c.Request().Context()
	return ctx, trace.SpanFromContext(ctx)
}

// RecordSpanError records err on the span together with its response status.
// Only errors answered with a 5xx mark the span failed.
// The span is ended by the tracing middleware.
func RecordSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}

	status := domain.GetStatusCode(err)
	span.RecordError(err)
	span.SetAttributes(attribute.Int("sor.error_status", status))
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, err.Error())
	}
}
