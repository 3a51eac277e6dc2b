package session_test

import (
	"context"
	"sync"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

type fakeSessions struct {
	mu         sync.Mutex
	users      map[string]*session.User
	meErr      error
	loginToken string
	loginErr   error
	meCalls    int
	loginCalls int

	// When meGate is set, CurrentUser signals meEntered and waits for meGate.
	meGate    chan struct{}
	meEntered chan struct{}
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{users: make(map[string]*session.User)}
}

func (f *fakeSessions) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	f.mu.Lock()
	gate, entered := f.meGate, f.meEntered
	f.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		select {
		case <-gate:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if f.meErr != nil {
		return nil, f.meErr
	}
	u, ok := f.users[token]
	if !ok || u == nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeSessions) Login(_ context.Context, _ session.Credentials) (session.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	if f.loginErr != nil {
		return session.LoginResult{}, f.loginErr
	}
	return session.LoginResult{AccessToken: f.loginToken, TokenType: "bearer"}, nil
}

type fakeFavorites struct {
	mu        sync.Mutex
	refs      []favorites.Ref
	listErr   error
	addErr    error
	removeErr error
	calls     int

	// When gate is set, Add and Remove signal entered and wait for gate.
	gate    chan struct{}
	entered chan favorites.ID
}

func (f *fakeFavorites) List(_ context.Context) ([]favorites.Ref, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]favorites.Ref(nil), f.refs...), nil
}

func (f *fakeFavorites) Add(ctx context.Context, id favorites.ID) error {
	f.wait(ctx, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.addErr != nil {
		return f.addErr
	}
	f.refs = append(f.refs, favorites.Bare(id.String()))
	return nil
}

func (f *fakeFavorites) Remove(ctx context.Context, id favorites.ID) error {
	f.wait(ctx, id)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.removeErr != nil {
		return f.removeErr
	}
	kept := f.refs[:0]
	for _, ref := range f.refs {
		if rid, err := favorites.Normalize(ref); err == nil && rid == id {
			continue
		}
		kept = append(kept, ref)
	}
	f.refs = kept
	return nil
}

func (f *fakeFavorites) wait(ctx context.Context, id favorites.ID) {
	f.mu.Lock()
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate == nil {
		return
	}
	entered <- id
	select {
	case <-gate:
	case <-ctx.Done():
	}
}

func (f *fakeFavorites) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// detailError mimics an API error carrying a server-provided message.
type detailError struct{ detail string }

func (e detailError) Error() string       { return "api: status 400: " + e.detail }
func (e detailError) UserMessage() string { return e.detail }

type movie struct {
	MovieID string
	ID      string
}

func (m movie) FavoriteRef() favorites.Ref { return favorites.Record(m.MovieID, m.ID) }
