package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/moviekit/pkg/credential"
)

const (
	headerAuthorization = "Authorization"
	headerUserAgent     = "User-Agent"
)

type tokenOverrideKey struct{}

// withToken makes the transport use token for this request instead of the
// stored credential.
func withToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenOverrideKey{}, token)
}

func tokenOverride(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenOverrideKey{}).(string)
	return token, ok
}

// bearerTransport attaches the current credential and the user agent.
type bearerTransport struct {
	next      http.RoundTripper
	store     credential.Store
	userAgent string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	req = req.Clone(ctx)

	if req.Header.Get(headerAuthorization) == "" {
		token, ok := tokenOverride(ctx)
		if !ok && t.store != nil {
			stored, err := t.store.Get(ctx)
			switch {
			case err == nil:
				token = stored
			case errors.Is(err, credential.ErrNoCredential):
			default:
				return nil, errors.Join(ErrRequestFailed, err)
			}
		}
		if token != "" {
			req.Header.Set(headerAuthorization, "Bearer "+token)
		}
	}

	if t.userAgent != "" {
		req.Header.Set(headerUserAgent, t.userAgent)
	}

	return t.next.RoundTrip(req)
}
