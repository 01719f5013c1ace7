package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the chat service over HTTP with JSON payloads.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new chat service client.
// A nil limiter disables client-side rate limiting.
func NewClient(baseURL string, timeout time.Duration, limiter *rate.Limiter) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: limiter,
	}
}

// NewLimiter builds a limiter from config values. Non-positive limits disable limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Join registers name and returns the cursor baseline.
func (c *Client) Join(ctx context.Context, name string) (JoinResult, error) {
	q := url.Values{"name": {name}}

	var result JoinResult
	if err := c.do(ctx, OpJoin, http.MethodGet, "/join", q, nil, &result); err != nil {
		return JoinResult{}, err
	}
	return result, nil
}

// Leave removes name from the service roster.
func (c *Client) Leave(ctx context.Context, name string) error {
	q := url.Values{"name": {name}}
	return c.do(ctx, OpLeave, http.MethodPost, "/leave", q, nil, nil)
}

// Messages fetches every message newer than lastID.
func (c *Client) Messages(ctx context.Context, lastID int64) ([]Message, error) {
	q := url.Values{"lastId": {strconv.FormatInt(lastID, 10)}}

	// The service encodes an empty result as null
	var msgs []Message
	if err := c.do(ctx, OpMessages, http.MethodGet, "/messages", q, nil, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

// Users fetches the current roster.
func (c *Client) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := c.do(ctx, OpUsers, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []string{}
	}
	return users, nil
}

type sendRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Send posts a message.
func (c *Client) Send(ctx context.Context, name, content string) error {
	return c.do(ctx, OpSend, http.MethodPost, "/send", nil, sendRequest{Name: name, Content: content}, nil)
}

// Close closes idle HTTP connections.
func (c *Client) Close() error {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
	return nil
}

// do performs one request. Every failure is reported as a TransportError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("rate limit: %w", err)}
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("create http request: %w", err)}
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("http request: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return &TransportError{Op: op, Status: httpResp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &TransportError{
			Op:     op,
			Status: httpResp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(respBody))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Op: op, Status: httpResp.StatusCode, Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}
