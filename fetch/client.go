// Package fetch is the outbound HTTP collaborator used for endpoint polling
// and rate scraping. Every failure it returns is an *Error carrying a Kind
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout is the per-call timeout
	DefaultTimeout = 10 * time.Second

	formContentType = "application/x-www-form-urlencoded"
	maxBodySize     = 8 << 20
)

// Request is a single outbound call description
type Request struct {
	Headers map[string]string
	Payload map[string]any
	Method  string
	URL     string
}

// Response is a successful (2xx) call result
type Response struct {
	Header     http.Header
	Body       []byte
	StatusCode int
}

// Client executes requests with a fixed timeout
type Client struct {
	client *http.Client
}

// NewClient creates a new client with the given per-call timeout
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Do executes the request. Non-2xx responses are returned as errors
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	body, contentType, err := encodePayload(r)
	if err != nil {
		return nil, &Error{
			Kind: KindUnknown,
			Err:  fmt.Errorf("unable to encode payload: %w", err),
		}
	}

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, &Error{
			Kind: KindUnknown,
			Err:  fmt.Errorf("unable to create request: %w", err),
		}
	}

	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classifyTransport(err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}

// encodePayload encodes the payload as a form if the request declares
// a form content type, and as JSON otherwise
func encodePayload(r *Request) (io.Reader, string, error) {
	if r.Payload == nil {
		return http.NoBody, "", nil
	}

	if isForm(r.Headers) {
		values := url.Values{}
		for k, v := range r.Payload {
			values.Set(k, fmt.Sprint(v))
		}

		return strings.NewReader(values.Encode()), formContentType, nil
	}

	encoded, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, "", err
	}

	return bytes.NewReader(encoded), "application/json", nil
}

func isForm(headers map[string]string) bool {
	for k, v := range headers {
		if strings.EqualFold(k, "Content-Type") && strings.HasPrefix(strings.ToLower(v), formContentType) {
			return true
		}
	}

	return false
}
