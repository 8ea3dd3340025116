package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/baseswapfi/sor/domain"
	"github.com/baseswapfi/sor/log"
)

// GoMiddleware holds the echo middlewares of the router server.
type GoMiddleware struct {
	corsConfig domain.CORSConfig
	logger     log.Logger
}

const queryAttributePrefix = "query."

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sor_requests_total",
			Help: "Total number of requests.",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sor_request_duration_seconds",
			Help:    "Histogram of request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	requestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sor_requests_in_flight",
			Help: "Number of requests being served.",
		},
	)
)

// InitMiddleware creates the middlewares. A nil corsConfig sends empty CORS headers.
func InitMiddleware(corsConfig *domain.CORSConfig, logger log.Logger) *GoMiddleware {
	m := &GoMiddleware{logger: logger}
	if corsConfig != nil {
		m.corsConfig = *corsConfig
	}
	return m
}

// CORS sets the configured CORS headers and answers preflight requests.
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Response().Header()
		header.Set(echo.HeaderAccessControlAllowOrigin, m.corsConfig.AllowedOrigin)
		header.Set(echo.HeaderAccessControlAllowHeaders, m.corsConfig.AllowedHeaders)
		header.Set(echo.HeaderAccessControlAllowMethods, m.corsConfig.AllowedMethods)

		if c.Request().Method == http.MethodOptions {
			return c.NoContent(http.StatusNoContent)
		}
		return next(c)
	}
}

// InstrumentMiddleware counts and times requests per route template and
// stores the route in the request context.
func (m *GoMiddleware) InstrumentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		start := time.Now()
		method := c.Request().Method
		route := domain.RequestRoute(c)

		c.SetRequest(c.Request().WithContext(domain.WithURLPath(c.Request().Context(), route)))

		err := next(c)

		duration := time.Since(start)
		status := responseStatus(c, err)

		requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())

		m.logger.Debug("request served",
			zap.String("method", method),
			zap.String("path", route),
			zap.Int("status", status),
			zap.Duration("duration", duration),
		)

		return err
	}
}

// TraceWithParamsMiddleware starts a server span named after the route,
// continuing any trace propagated in the request headers. Query parameters
// are recorded as span attributes.
func (m *GoMiddleware) TraceWithParamsMiddleware(tracerName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			parentCtx := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

			ctx, span := otel.Tracer(tracerName).Start(parentCtx, domain.RequestRoute(c), trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()

			c.SetRequest(req.WithContext(ctx))

			attributes := []attribute.KeyValue{attribute.String("http.method", req.Method)}
			for key, values := range c.QueryParams() {
				if len(values) > 0 {
					attributes = append(attributes, attribute.String(queryAttributePrefix+key, values[0]))
				}
			}
			span.SetAttributes(attributes...)

			err := next(c)

			status := responseStatus(c, err)
			span.SetAttributes(attribute.Int("http.status_code", status))
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			return err
		}
	}
}

// responseStatus is the status of the written response, or of the echo error
// returned before anything was written.
func responseStatus(c echo.Context, err error) int {
	if httpErr, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
		return httpErr.Code
	}
	return c.Response().Status
}
