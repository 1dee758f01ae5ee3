package agent

import (
	"errors"
	"fmt"
	"testing"
)

func TestAuthError_DistinctFromRequestError(t *testing.T) {
	var err error = &AuthError{Body: "bad key"}

	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatal("expected errors.As to match *AuthError")
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		t.Error("an auth failure must not match *RequestError")
	}
}

func TestAuthError_Message(t *testing.T) {
	err := &AuthError{Body: "whatever the backend said"}
	if err.Error() != "authentication failed: invalid API key" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestRequestError_CarriesStatus(t *testing.T) {
	err := &RequestError{StatusCode: 503, Body: "overloaded"}

	var reqErr *RequestError
	if !errors.As(error(err), &reqErr) {
		t.Fatal("expected errors.As to match *RequestError")
	}
	if reqErr.StatusCode != 503 {
		t.Errorf("expected status 503, got %d", reqErr.StatusCode)
	}
	if reqErr.Error() == "" {
		t.Error("expected non-empty error message")
	}
}

func TestProtocolError_Unwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &ProtocolError{Message: "failed to parse payload", Line: "data: {", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("decoding: %w", err)
	var perr *ProtocolError
	if !errors.As(wrapped, &perr) {
		t.Fatal("expected errors.As to match through wrapping")
	}
	if perr.Line != "data: {" {
		t.Errorf("expected the offending line to survive, got %q", perr.Line)
	}
}

func TestFileError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := &FileError{Path: "/tmp/notes.txt", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	var ferr *FileError
	if !errors.As(error(err), &ferr) {
		t.Fatal("expected errors.As to match *FileError")
	}
	if ferr.Path != "/tmp/notes.txt" {
		t.Errorf("expected path to survive, got %q", ferr.Path)
	}
}

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{
		ErrNoAPIKey,
		ErrEmptyMessage,
		ErrAlreadyStreaming,
		ErrSessionClosed,
	}
	for _, err := range sentinels {
		if err == nil {
			t.Error("sentinel error is nil")
			continue
		}
		if err.Error() == "" {
			t.Error("sentinel error has empty message")
		}
	}
}

func TestIsRecoverable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{&AuthError{}, "auth failure", false},
		{ErrNoAPIKey, "missing key", false},
		{ErrSessionClosed, "closed session", false},
		{&RequestError{StatusCode: 500}, "server error", true},
		{&ProtocolError{Message: "bad line"}, "protocol error", true},
		{&FileError{Path: "x"}, "file error", true},
		{ErrEmptyMessage, "empty message", true},
		{errors.New("transient"), "plain error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRecoverable(tt.err); got != tt.want {
				t.Errorf("IsRecoverable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
