package agent

import "net/http"

// DefaultBaseURL is the backend address used when no option overrides it.
const DefaultBaseURL = "http://localhost:5000"

// ClientConfig holds configuration for a Client.
type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*ClientConfig)

// WithBaseURL sets the backend base URL.
func WithBaseURL(url string) ClientOption {
	return func(c *ClientConfig) {
		c.BaseURL = url
	}
}

// WithAPIKey sets the key sent in the x-api-key header.
func WithAPIKey(key string) ClientOption {
	return func(c *ClientConfig) {
		c.APIKey = key
	}
}

// WithHTTPClient sets the underlying HTTP client. The default client has no
// timeout because chat responses are open-ended streams; pass one configured
// with transport-level timeouts if you need them.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *ClientConfig) {
		c.HTTPClient = hc
	}
}

// SessionConfig holds configuration for a Session.
type SessionConfig struct {
	SystemPrompt    string
	Tools           []ToolDef
	HistoryLimit    int
	EventBufferSize int
}

func defaultSessionConfig() SessionConfig {
	return SessionConfig{
		HistoryLimit:    DefaultHistoryLimit,
		EventBufferSize: 100,
	}
}

// SessionOption is a functional option for configuring a Session.
type SessionOption func(*SessionConfig)

// WithSystemPrompt sets the system prompt sent with every turn.
func WithSystemPrompt(prompt string) SessionOption {
	return func(c *SessionConfig) {
		c.SystemPrompt = prompt
	}
}

// WithTools sets the tool definitions offered to the backend.
func WithTools(tools ...ToolDef) SessionOption {
	return func(c *SessionConfig) {
		c.Tools = tools
	}
}

// WithHistoryLimit caps how many prior turns accompany each request.
func WithHistoryLimit(n int) SessionOption {
	return func(c *SessionConfig) {
		c.HistoryLimit = n
	}
}

// WithEventBufferSize sets the event channel buffer size (default 100).
func WithEventBufferSize(n int) SessionOption {
	return func(c *SessionConfig) {
		c.EventBufferSize = n
	}
}
