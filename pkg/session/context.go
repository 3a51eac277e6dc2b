package session

import "context"

type managerContextKey struct{}

// WithManager attaches the manager to ctx so code deep in a call chain can
// reach the session without a global.
func WithManager(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerContextKey{}, m)
}

// FromContext retrieves the manager from the context
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(managerContextKey{}).(*Manager)
	return m, ok && m != nil
}

// MustFromContext retrieves the manager from the context or panics
func MustFromContext(ctx context.Context) *Manager {
	m, ok := FromContext(ctx)
	if !ok {
		panic("session: manager not found in context")
	}
	return m
}

// UserFromContext returns the signed-in user of the manager in ctx.
func UserFromContext(ctx context.Context) (*User, bool) {
	m, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	st := m.Snapshot()
	return st.User, st.User != nil
}
