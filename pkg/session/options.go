package session

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/favorites"
)

// NotifyFunc shows a failure to the user at the point where an optimistic
// change had to be reverted.
type NotifyFunc func(ctx context.Context, id favorites.ID, message string)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithCredentialStore sets where the bearer token is persisted.
// Defaults to a credential.MemoryStore.
func WithCredentialStore(store credential.Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithNotifier sets the callback used to surface rolled back toggles.
// Defaults to a warning in the log.
func WithNotifier(fn NotifyFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.notify = fn
		}
	}
}
