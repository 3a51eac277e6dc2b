package credential

import (
	"context"
	"io"
)

// DefaultKey is the well-known key the token is stored under.
const DefaultKey = "token"

// Store holds at most one bearer token. Implementations must be safe for
// concurrent use; the last writer wins.
type Store interface {
	// Get returns the stored token or ErrNoCredential.
	Get(ctx context.Context) (string, error)

	// Set replaces the stored token.
	Set(ctx context.Context, token string) error

	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Close releases resources held by stores that own a connection.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
