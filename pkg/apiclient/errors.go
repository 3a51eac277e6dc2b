package apiclient

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidBaseURL  = errors.New("apiclient.invalid_base_url")
	ErrRequestFailed   = errors.New("apiclient.request_failed")
	ErrDecodeResponse  = errors.New("apiclient.decode_response")
	ErrEncodeRequest   = errors.New("apiclient.encode_request")
	ErrCircuitOpen     = errors.New("apiclient.circuit_open")
	ErrRateLimited     = errors.New("apiclient.rate_limited")
	ErrMissingArgument = errors.New("apiclient.missing_argument")

	ErrBadRequest   = errors.New("apiclient.bad_request")
	ErrUnauthorized = errors.New("apiclient.unauthorized")
	ErrForbidden    = errors.New("apiclient.forbidden")
	ErrNotFound     = errors.New("apiclient.not_found")
	ErrConflict     = errors.New("apiclient.conflict")
	ErrValidation   = errors.New("apiclient.validation")
	ErrServer       = errors.New("apiclient.server_error")
	ErrRejected     = errors.New("apiclient.rejected")
)

const genericMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	// Detail is the human-readable reason taken from the response body.
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// UserMessage returns the server's detail text, or a text built from the
// status code when the body had none.
func (e *APIError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return "Request failed: " + text
	}
	return genericMessage
}

// Unwrap maps the status code to a sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusUnprocessableEntity:
		return ErrValidation
	}
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrServer
	}
	return ErrRejected
}

// IsUnauthorized reports whether err is a 401 or 403 response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// Message returns the text to show a user for err. It prefers the server's
// detail. Transport failures and multi-line error chains get a generic
// message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, ErrRequestFailed) || errors.Is(err, ErrDecodeResponse) {
		return genericMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" && !strings.Contains(msg, "\n") {
		return msg
	}
	return genericMessage
}

func newAPIError(status int, body []byte) *APIError {
	return &APIError{StatusCode: status, Detail: extractDetail(body), Body: body}
}

// extractDetail reads "detail" (a string or a list of validation errors with
// "msg") and falls back to "message".
func extractDetail(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	detail := bytes.TrimSpace(payload.Detail)
	if len(detail) > 0 {
		switch detail[0] {
		case '"':
			var s string
			if err := json.Unmarshal(detail, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		case '[':
			var items []struct {
				Msg string `json:"msg"`
			}
			if err := json.Unmarshal(detail, &items); err == nil {
				msgs := make([]string, 0, len(items))
				for _, it := range items {
					if m := strings.TrimSpace(it.Msg); m != "" {
						msgs = append(msgs, m)
					}
				}
				if len(msgs) > 0 {
					return strings.Join(msgs, "; ")
				}
			}
		}
	}

	return strings.TrimSpace(payload.Message)
}
