package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the agent backend over HTTP.
type Client struct {
	httpc   *http.Client
	baseURL string
	apiKey  string
}

// NewClient creates a client for the backend. Without WithAPIKey the client
// still constructs, but Stream and Resolve fail fast with ErrNoAPIKey.
func NewClient(opts ...ClientOption) *Client {
	cfg := ClientConfig{BaseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		// No overall timeout: the chat response is an open-ended stream.
		// Cancellation comes from the request context.
		httpc = &http.Client{}
	}

	return &Client{
		httpc:   httpc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

// Stream posts one conversation turn and returns the live event stream. It
// fails with ErrNoAPIKey before any network activity when no key is
// configured, and with ErrEmptyMessage when there is nothing to send. A 401
// response maps to *AuthError, any other non-2xx response to *RequestError.
func (c *Client) Stream(ctx context.Context, req TurnRequest) (*Stream, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if strings.TrimSpace(req.Message) == "" && len(req.Files) == 0 {
		return nil, ErrEmptyMessage
	}

	body, err := json.Marshal(buildChatBody(req))
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	return &Stream{dec: NewDecoder(resp.Body), body: resp.Body}, nil
}

// Resolve delivers an approve or deny decision for a confirmation. Callers
// send each decision at most once; a failure is returned for logging but
// never retried, since the local state is already terminal.
func (c *Client) Resolve(ctx context.Context, confirmationID string, approved bool) error {
	if c.apiKey == "" {
		return ErrNoAPIKey
	}

	body, err := json.Marshal(map[string]interface{}{
		"confirmation_id": confirmationID,
		"approved":        approved,
	})
	if err != nil {
		return fmt.Errorf("encoding confirm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/confirm", bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return err
	}
	if err := checkStatus(resp); err != nil {
		return err
	}
	drainAndClose(resp.Body)
	return nil
}

// HealthStatus is the backend's liveness report.
type HealthStatus struct {
	Status string `json:"status"`
	App    string `json:"app"`
}

// Health probes the backend liveness endpoint. It needs no API key.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return HealthStatus{}, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return HealthStatus{}, err
	}

	var hs HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&hs); err != nil {
		return HealthStatus{}, fmt.Errorf("decoding health response: %w", err)
	}
	return hs, nil
}

func (c *Client) setHeaders(r *http.Request) {
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("x-api-key", c.apiKey)
}

// checkStatus classifies a non-2xx response and consumes its body. On
// success the body is left open for the caller.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet := readSnippet(resp.Body)
	resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Body: snippet}
	}
	return &RequestError{StatusCode: resp.StatusCode, Body: snippet}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	body.Close()
}

// Stream is one live turn: a decoder plus ownership of the underlying
// response body.
type Stream struct {
	dec  *Decoder
	body io.ReadCloser
}

// Next returns the next event from the turn. It returns io.EOF once the
// backend closes the stream.
func (s *Stream) Next() (Event, error) {
	return s.dec.Next()
}

// Close aborts the stream and releases the connection.
func (s *Stream) Close() error {
	return s.body.Close()
}
