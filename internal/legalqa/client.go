// Package legalqa is a focused client for the legal research backend's
// question answering endpoint.
package legalqa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const askPath = "/api/legal-qa/ask"

// ContextMessage is one prior conversation turn sent as a hint with a
// question. Role is "user" or "assistant".
type ContextMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the request shape for the ask endpoint.
type AskRequest struct {
	Question     string           `json:"question"`
	SessionID    string           `json:"session_id,omitempty"`
	Jurisdiction string           `json:"jurisdiction,omitempty"`
	Domain       string           `json:"domain,omitempty"`
	Context      []ContextMessage `json:"context,omitempty"`
}

// AskResponse is the minimal response shape returned by the backend.
type AskResponse struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
	SessionID  string   `json:"session_id"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware
// context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("legalqa: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the legal research backend.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIKey sets a bearer token sent with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("legalqa: base URL must not be empty")
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return c, nil
}

// Ask submits a question and returns the backend's answer.
func (c *Client) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return AskResponse{}, errors.New("legalqa: question must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return AskResponse{}, fmt.Errorf("legalqa: marshal request: %w", err)
	}

	url := c.baseURL + askPath

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return AskResponse{}, fmt.Errorf("legalqa: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	raw, err := c.doJSONRequest(httpReq, url)
	if err != nil {
		return AskResponse{}, fmt.Errorf("legalqa: request failed: %w", err)
	}

	var payload AskResponse
	if decErr := json.Unmarshal(raw, &payload); decErr != nil {
		return AskResponse{}, fmt.Errorf("legalqa: decode response: %w", decErr)
	}
	if strings.TrimSpace(payload.Answer) == "" {
		return AskResponse{}, errors.New("legalqa: empty answer in response")
	}

	return payload, nil
}

func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}
