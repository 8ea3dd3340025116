package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/baseswapfi/sor/domain"
)

const defaultClientTimeout = 5 * time.Second

// DefaultClient issues outgoing HTTP requests with trace context propagation.
var DefaultClient = NewClient(defaultClientTimeout)

// NewClient returns a traced HTTP client with the given timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// Validator is a request able to check its own invariants.
type Validator interface {
	Validate() error
}

// RequestUnmarshaler is a request read from the query of an echo context.
type RequestUnmarshaler interface {
	UnmarshalHTTPRequest(c echo.Context) error
}

// ParseRequest unmarshals req and validates it when it implements Validator.
// Every returned error is classified as invalid input.
func ParseRequest(c echo.Context, req RequestUnmarshaler) error {
	if err := req.UnmarshalHTTPRequest(c); err != nil {
		return asBadParam(err)
	}

	v, ok := req.(Validator)
	if !ok {
		return nil
	}
	return asBadParam(v.Validate())
}

func asBadParam(err error) error {
	if err == nil || domain.IsInvalidInput(err) || errors.Is(err, domain.ErrBadParamInput) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrBadParamInput, err)
}
