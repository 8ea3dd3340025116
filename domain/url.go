package domain

import (
	"context"

	"github.com/labstack/echo/v4"
)

type requestPathCtxKey struct{}

// UnmatchedPath labels requests that matched no registered route.
const UnmatchedPath = "unmatched"

// RequestRoute returns the registered route template of the request, e.g. /tokens/metadata.
// Raw URL paths are never used so that metric labels stay bounded.
func RequestRoute(c echo.Context) string {
	if path := c.Path(); path != "" {
		return path
	}
	return UnmatchedPath
}

// WithURLPath stores the request route in ctx.
func WithURLPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathCtxKey{}, path)
}

// GetURLPathFromContext returns the request route stored by WithURLPath.
func GetURLPathFromContext(ctx context.Context) string {
	requestPath, ok := ctx.Value(requestPathCtxKey{}).(string)
	if !ok || requestPath == "" {
		return UnmatchedPath
	}
	return requestPath
}
