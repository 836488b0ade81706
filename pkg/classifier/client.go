// Package classifier provides a client for the income classification service.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrMalformedBody is returned when a success response is not a JSON object.
var ErrMalformedBody = eris.New("classifier: malformed response body")

// Client defines the classification service operations.
type Client interface {
	// Predict POSTs payload as JSON to endpoint and returns the decoded
	// success body. Non-2xx responses are returned as *StatusError.
	Predict(ctx context.Context, endpoint string, payload any) (*Response, error)
}

// Response is a decoded success response.
type Response struct {
	StatusCode int
	RequestID  string
	Body       map[string]any
}

// Option configures the classifier client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRequestIDs overrides the request id generator (for testing).
func WithRequestIDs(gen func() string) Option {
	return func(c *httpClient) {
		c.newID = gen
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	newID   func() string
}

// NewClient creates a classifier client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *httpClient) Predict(ctx context.Context, endpoint string, payload any) (*Response, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: marshal payload")
	}

	reqURL := c.url(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "classifier: create request")
	}

	id := c.newID()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, id)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "classifier: request failed")
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, eris.Wrap(err, "classifier: read response body")
	}

	zap.L().Debug("classifier: response",
		zap.String("url", reqURL),
		zap.String("request_id", id),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(resp.StatusCode, body)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil || decoded == nil {
		return nil, eris.Wrapf(ErrMalformedBody, "status %d", resp.StatusCode)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		RequestID:  id,
		Body:       decoded,
	}, nil
}

// StatusError is a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	// Detail is the server-supplied explanation, empty when the body had none.
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Server responded with status: %d", e.StatusCode)
}

// newStatusError extracts the "detail" field from an error body. A string
// detail is used as is; a list of validation entries is reduced to their
// "msg" fields.
func newStatusError(code int, body []byte) *StatusError {
	se := &StatusError{StatusCode: code}

	var parsed struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Detail) == 0 {
		return se
	}

	var text string
	if err := json.Unmarshal(parsed.Detail, &text); err == nil {
		se.Detail = strings.TrimSpace(text)
		return se
	}

	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(parsed.Detail, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		se.Detail = strings.Join(msgs, "; ")
	}
	return se
}
