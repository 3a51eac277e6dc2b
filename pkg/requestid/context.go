package requestid

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
)

const (
	// Header is the HTTP header the id travels in.
	Header      = "X-Request-ID"
	maxIDLength = 128
)

var validID = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

type contextKey struct{}

// WithContext stores requestID in ctx. Invalid ids are replaced with a new one.
func WithContext(ctx context.Context, requestID string) context.Context {
	if !Valid(requestID) {
		requestID = New()
	}
	return context.WithValue(ctx, contextKey{}, requestID)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, ok := ctx.Value(contextKey{}).(string)
	if !ok {
		return ""
	}
	return requestID
}

// Ensure returns ctx and its request id, attaching a new id when ctx has none.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return context.WithValue(ctx, contextKey{}, id), id
}

// New generates a request id.
func New() string { return uuid.NewString() }

// Valid reports whether id is safe to echo in headers and logs.
func Valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}

// LoggerExtractor adds request_id to records logged with a tagged context.
func LoggerExtractor() func(context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := FromContext(ctx)
		return slog.String("request_id", id), id != ""
	}
}
