// internal/common/http/client.go
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "petfinder/internal/common/errors"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 4 << 20

// StatusError is returned for non-2xx, non-5xx answers so callers can map
// client errors onto their own codes.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Service, e.StatusCode, e.Body)
}

type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithUserAgent sets the User-Agent sent on every request.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// HTTPClient exposes the underlying client, e.g. for httpmock activation.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.Do(req)
}

// DoRaw executes req and returns the body of a 2xx answer. Transport
// failures become NETWORK_ERROR, 5xx becomes SERVER_ERROR and other
// non-2xx answers a *StatusError.
func (c *Client) DoRaw(ctx context.Context, service string, req *http.Request) ([]byte, error) {
	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return nil, apperrors.NewNetworkError(service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperrors.NewNetworkError(service, err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, apperrors.NewServerError(service, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &StatusError{Service: service, StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}
	return body, nil
}

// DoJSON executes req and decodes a 2xx body into out. A nil out discards the body.
func (c *Client) DoJSON(ctx context.Context, service string, req *http.Request, out interface{}) error {
	body, err := c.DoRaw(ctx, service, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewInvalidResponseError(service, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
