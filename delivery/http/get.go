package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/baseswapfi/sor/domain/json"
)

// Get issues a GET request with the default client and returns the response body.
// Non-2xx responses are returned as errors together with the body.
func Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	return do(req)
}

// GetJSON issues a GET request and unmarshals the response body into T.
func GetJSON[T any](ctx context.Context, url string) (*T, error) {
	body, err := Get(ctx, url)
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal: %w", err)
	}

	return &out, nil
}

// PostJSON marshals in, posts it with the given headers and returns the response body.
func PostJSON(ctx context.Context, url string, headers map[string]string, in any) ([]byte, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return do(req)
}

func do(req *http.Request) ([]byte, error) {
	resp, err := DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}
