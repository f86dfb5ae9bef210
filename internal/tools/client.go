// Package tools wraps the external lookup services the agent can call:
// Naver local search and geocoding, SK T-Map pedestrian routing and
// Wikipedia, plus their eino tool adapters.
package tools

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	errs "github.com/cloudwego/hertz/pkg/common/errors"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// DefaultTimeout bounds every upstream call unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// Client is a shared outbound HTTP client. Every call runs under the
// client timeout or the context deadline, whichever comes first.
type Client struct {
	hc      *client.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a client with a TLS-capable dialer.
func NewClient(timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	hc, err := client.NewClient(
		client.WithDialer(standard.NewDialer()),
		client.WithTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12}),
	)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{hc: hc, timeout: timeout, logger: logger}, nil
}

// Get issues a GET with query parameters and returns the response body.
func (c *Client) Get(ctx context.Context, service, rawURL string, query url.Values, headers map[string]string) ([]byte, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	return c.do(ctx, service, consts.MethodGet, rawURL, headers, nil)
}

// PostJSON issues a POST with payload encoded as JSON.
func (c *Client) PostJSON(ctx context.Context, service, rawURL string, payload any, headers map[string]string) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ExternalServiceError{Service: service, Status: 500, Detail: "encode request", Err: err}
	}
	return c.do(ctx, service, consts.MethodPost, rawURL, headers, body)
}

func (c *Client) do(ctx context.Context, service, method, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, c.fail(ctx, service, method, rawURL, statusFor(err), err)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(rawURL)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	if err := c.hc.DoTimeout(ctx, req, resp, timeout); err != nil {
		return nil, c.fail(ctx, service, method, rawURL, statusFor(err), err)
	}

	status := resp.StatusCode()
	c.logger.DebugContext(ctx, "upstream call finished",
		slog.String("service", service),
		slog.String("method", method),
		slog.Int("status", status),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	if status >= 400 {
		return nil, &ExternalServiceError{Service: service, Status: status, Detail: string(resp.Body())}
	}

	// The response buffer is recycled on release.
	return append([]byte(nil), resp.Body()...), nil
}

func (c *Client) fail(ctx context.Context, service, method, rawURL string, status int, err error) error {
	c.logger.WarnContext(ctx, "upstream call failed",
		slog.String("service", service),
		slog.String("method", method),
		slog.String("url", rawURL),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
	detail := err.Error()
	if status == 408 {
		detail = "Request Timeout"
	}
	return &ExternalServiceError{Service: service, Status: status, Detail: detail, Err: err}
}

func statusFor(err error) int {
	if errors.Is(err, errs.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return 408
	}
	return 500
}
