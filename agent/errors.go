package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	ErrNoAPIKey         = errors.New("no API key configured")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrAlreadyStreaming = errors.New("a turn is already streaming")
	ErrSessionClosed    = errors.New("session is closed")
)

// AuthError indicates the backend rejected the API key (HTTP 401). It is
// distinct from other request failures so callers can prompt for a new key
// instead of retrying.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string {
	return "authentication failed: invalid API key"
}

// RequestError represents a non-success HTTP response other than 401. It is
// terminal for the turn that produced it.
type RequestError struct {
	Body       string
	StatusCode int
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// ProtocolError represents a malformed line in the event stream. Decoding
// skips the line and continues; the stream itself is unaffected.
type ProtocolError struct {
	Cause   error
	Message string
	Line    string
}

func (e *ProtocolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("protocol error: %s", e.Message)
}

func (e *ProtocolError) Unwrap() error {
	return e.Cause
}

// FileError reports a single attachment that could not be prepared. The
// surrounding operation skips the file and continues.
type FileError struct {
	Cause error
	Path  string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %q: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// IsRecoverable returns true if the error leaves the conversation usable.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}

	// Auth failures require a new key.
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return false
	}

	// Other transport failures end the turn but not the conversation; a
	// missing key cannot fix itself.
	if errors.Is(err, ErrNoAPIKey) || errors.Is(err, ErrSessionClosed) {
		return false
	}

	// Protocol errors are skipped line by line; per-file failures skip the
	// file. Most other errors are recoverable.
	return true
}
