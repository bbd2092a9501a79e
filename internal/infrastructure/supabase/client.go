package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-status-dashboard/internal/core/domain"
	"github.com/kirillkom/document-status-dashboard/internal/infrastructure/resilience"
)

// Client talks to the Supabase REST and storage gateways with the service
// role key.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
	guard      *resilience.Guard
}

type Options struct {
	Timeout time.Duration
	Guard   *resilience.Guard
}

func New(baseURL, serviceKey string, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
		guard:      opts.Guard,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "supabase status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("supabase %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("supabase %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

type request struct {
	method      string
	path        string
	contentType string
	body        io.Reader
	headers     map[string]string
}

// do executes one call behind the breaker and decodes a JSON body into out
// when out is non-nil.
func (c *Client) do(ctx context.Context, operation string, r request, out any) error {
	call := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, r.body)
		if err != nil {
			return fmt.Errorf("create %s request: %w", operation, err)
		}
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
		req.Header.Set("apikey", c.serviceKey)
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		for k, v := range r.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("supabase %s request: %w", operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return newHTTPStatusError(operation, resp)
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		dec := json.NewDecoder(resp.Body)
		dec.UseNumber()
		if err := dec.Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", operation, err)
		}
		return nil
	}

	err := c.guard.Execute(ctx, "supabase."+operation, call, countsAsFailure)
	return wrapTemporaryIfNeeded(operation, err)
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, payload any, headers map[string]string, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}
	return c.do(ctx, operation, request{
		method:      method,
		path:        path,
		contentType: "application/json",
		body:        bytes.NewReader(body),
		headers:     headers,
	}, out)
}

func newHTTPStatusError(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	return &HTTPStatusError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       string(body),
	}
}

// countsAsFailure keeps client-side mistakes away from the breaker.
func countsAsFailure(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return isUpstreamHTTPStatus(statusErr.StatusCode)
	}
	return true
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if err == nil || domain.IsKind(err, domain.ErrTemporary) {
		return err
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return domain.WrapError(domain.ErrNotFound, operation, err)
		case statusErr.StatusCode == http.StatusUnauthorized, statusErr.StatusCode == http.StatusForbidden:
			return domain.WrapError(domain.ErrUnauthorized, operation, err)
		case isUpstreamHTTPStatus(statusErr.StatusCode):
			return domain.WrapError(domain.ErrTemporary, operation, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}

func isUpstreamHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
