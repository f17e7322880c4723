package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnexpectedPayload means the backend answered 2xx with a body of the
// wrong shape (for example an object where a list was expected).
var ErrUnexpectedPayload = errors.New("apiclient: unexpected response payload")

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    extractMessage(status, body),
		Body:       body,
	}
}

// extractMessage picks the human message the backend sent, falling back to
// the status text.
func extractMessage(status int, body []byte) string {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil {
		for _, key := range []string{"message", "error", "detail"} {
			if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	var s string
	if err := json.Unmarshal(body, &s); err == nil && strings.TrimSpace(s) != "" {
		return s
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 300 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}

// TransportError means no HTTP answer was received.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Kind classifies a failure for the caller.
type Kind int

const (
	KindNone Kind = iota
	KindTransport
	KindAuth
	KindValidation
	KindServer
	KindCanceled
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindCanceled:
		return "canceled"
	}
	return "unknown"
}

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return KindAuth
		case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
			return KindValidation
		case apiErr.StatusCode >= 500:
			return KindServer
		}
		return KindUnknown
	}
	if errors.Is(err, ErrUnexpectedPayload) {
		return KindServer
	}
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return KindTransport
	}
	return KindUnknown
}

func IsAuth(err error) bool       { return Classify(err) == KindAuth }
func IsValidation(err error) bool { return Classify(err) == KindValidation }
func IsServer(err error) bool     { return Classify(err) == KindServer }
func IsTransport(err error) bool  { return Classify(err) == KindTransport }

// StatusCode returns the backend status for an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Message returns the backend message for an APIError, or err.Error().
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
