package session_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/logger"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

type harness struct {
	sessions *fakeSessions
	favs     *fakeFavorites
	store    *credential.MemoryStore
	manager  *session.Manager

	mu       sync.Mutex
	notified []string
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()
	h := &harness{
		sessions: newFakeSessions(),
		favs:     &fakeFavorites{},
		store:    credential.NewMemoryStore(),
	}
	if token != "" {
		require.NoError(t, h.store.Set(context.Background(), token))
	}
	h.manager = session.New(h.sessions, h.favs,
		session.WithCredentialStore(h.store),
		session.WithLogger(logger.Discard()),
		session.WithNotifier(func(_ context.Context, _ favorites.ID, message string) {
			h.mu.Lock()
			h.notified = append(h.notified, message)
			h.mu.Unlock()
		}),
	)
	t.Cleanup(func() { _ = h.manager.Close() })
	return h
}

// loggedIn returns a harness with user ana signed in and the given favorites.
func loggedIn(t *testing.T, refs ...favorites.Ref) *harness {
	t.Helper()
	h := newHarness(t, "t0")
	h.sessions.users["t0"] = &session.User{ID: 1, Username: "ana"}
	h.favs.refs = refs
	require.NoError(t, h.manager.Initialize(context.Background()))
	require.True(t, h.manager.Snapshot().IsAuthenticated())
	return h
}

func (h *harness) notifications() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.notified...)
}

func TestManager_New(t *testing.T) {
	t.Run("starts initializing", func(t *testing.T) {
		h := newHarness(t, "")
		st := h.manager.Snapshot()
		assert.Equal(t, session.StatusInitializing, st.Status)
		assert.Equal(t, session.PhaseInitializing, st.Phase())
		assert.Nil(t, st.User)
		assert.NotNil(t, st.Favorites)
	})

	t.Run("requires services", func(t *testing.T) {
		assert.Panics(t, func() { session.New(nil, &fakeFavorites{}) })
		assert.Panics(t, func() { session.New(newFakeSessions(), nil) })
	})
}

func TestManager_Initialize(t *testing.T) {
	ctx := context.Background()

	t.Run("no stored credential", func(t *testing.T) {
		h := newHarness(t, "")
		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		assert.Equal(t, session.StatusReady, st.Status)
		assert.Equal(t, session.PhaseLoggedOut, st.Phase())
		assert.Nil(t, st.User)
		assert.Equal(t, 0, h.sessions.meCalls, "no token means no profile call")
	})

	t.Run("valid credential restores user and favorites", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1, Username: "ana"}
		h.favs.refs = []favorites.Ref{favorites.Bare("5"), favorites.Bare("8")}

		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		require.NotNil(t, st.User)
		assert.Equal(t, int64(1), st.User.ID)
		assert.Equal(t, "ana", st.User.Username)
		assert.True(t, st.Favorites.Equal(favorites.NewSet("5", "8")))
		assert.Equal(t, session.StatusReady, st.Status)
		assert.Equal(t, session.PhaseLoggedIn, st.Phase())
	})

	t.Run("mixed favorite shapes are normalized", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1}
		h.favs.refs = []favorites.Ref{favorites.Record("7", ""), favorites.Bare("9"), favorites.Record("", "3")}

		require.NoError(t, h.manager.Initialize(ctx))
		assert.True(t, h.manager.Snapshot().Favorites.Equal(favorites.NewSet("7", "9", "3")))
	})

	t.Run("expired credential is cleared silently", func(t *testing.T) {
		h := newHarness(t, "stale")
		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		assert.Nil(t, st.User)
		assert.Equal(t, session.StatusReady, st.Status)
		_, err := h.store.Get(ctx)
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})

	t.Run("profile without user clears credential", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = nil
		h.favs.refs = []favorites.Ref{favorites.Bare("5")}

		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		assert.Nil(t, st.User)
		assert.Equal(t, 0, st.Favorites.Len())
		assert.Equal(t, session.PhaseLoggedOut, st.Phase())
		assert.Equal(t, 0, h.favs.callCount(), "favorites are not loaded without a user")
		_, err := h.store.Get(ctx)
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})

	t.Run("logout during restore wins", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1, Username: "ana"}
		h.favs.refs = []favorites.Ref{favorites.Bare("5")}
		h.sessions.meGate = make(chan struct{})
		h.sessions.meEntered = make(chan struct{}, 1)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = h.manager.Initialize(ctx)
		}()

		select {
		case <-h.sessions.meEntered:
		case <-time.After(time.Second):
			t.Fatal("restore did not reach the profile call")
		}
		h.manager.Logout()
		close(h.sessions.meGate)

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("initialize did not return")
		}

		st := h.manager.Snapshot()
		assert.Nil(t, st.User)
		assert.Equal(t, 0, st.Favorites.Len())
		assert.Equal(t, session.StatusReady, st.Status)
		assert.Equal(t, session.PhaseLoggedOut, st.Phase())
	})

	t.Run("profile failure resolves to logged out", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1}
		h.sessions.meErr = errors.New("connection refused")

		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		assert.Nil(t, st.User)
		assert.Equal(t, 0, st.Favorites.Len())
		assert.Equal(t, session.StatusReady, st.Status)
		_, err := h.store.Get(ctx)
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})

	t.Run("favorites failure keeps the user", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1}
		h.favs.listErr = errors.New("boom")

		require.NoError(t, h.manager.Initialize(ctx))

		st := h.manager.Snapshot()
		require.NotNil(t, st.User)
		assert.Equal(t, 0, st.Favorites.Len())
	})

	t.Run("runs once", func(t *testing.T) {
		h := newHarness(t, "t0")
		h.sessions.users["t0"] = &session.User{ID: 1}

		require.NoError(t, h.manager.Initialize(ctx))
		require.NoError(t, h.manager.Initialize(ctx))
		assert.Equal(t, 1, h.sessions.meCalls)
	})
}

func TestManager_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("persists token and fetches fresh state", func(t *testing.T) {
		h := newHarness(t, "")
		require.NoError(t, h.manager.Initialize(ctx))

		h.sessions.loginToken = "t1"
		h.sessions.users["t1"] = &session.User{ID: 1, Username: "ana"}
		h.favs.refs = []favorites.Ref{favorites.Bare("5"), favorites.Bare("8")}

		res, err := h.manager.Login(ctx, session.Credentials{Username: "ana", Password: "x"})
		require.NoError(t, err)
		assert.Equal(t, "t1", res.AccessToken)

		token, err := h.store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "t1", token)

		st := h.manager.Snapshot()
		require.NotNil(t, st.User)
		assert.Equal(t, int64(1), st.User.ID)
		assert.True(t, st.Favorites.Equal(favorites.NewSet("5", "8")))
		assert.Equal(t, 1, h.sessions.meCalls, "user comes from a profile call, not the login response")
	})

	t.Run("failure is returned and state stays logged out", func(t *testing.T) {
		h := newHarness(t, "")
		require.NoError(t, h.manager.Initialize(ctx))

		loginErr := detailError{detail: "Incorrect username or password"}
		h.sessions.loginErr = loginErr

		_, err := h.manager.Login(ctx, session.Credentials{Username: "ana", Password: "bad"})
		require.ErrorIs(t, err, loginErr)
		assert.Equal(t, "Incorrect username or password", session.Message(err))

		assert.Equal(t, session.PhaseLoggedOut, h.manager.Snapshot().Phase())
		_, err = h.store.Get(ctx)
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})

	t.Run("response without token", func(t *testing.T) {
		h := newHarness(t, "")
		_, err := h.manager.Login(ctx, session.Credentials{Username: "ana"})
		assert.ErrorIs(t, err, session.ErrNoToken)
	})

	t.Run("token not accepted by profile call", func(t *testing.T) {
		h := newHarness(t, "")
		h.sessions.loginToken = "unknown"

		_, err := h.manager.Login(ctx, session.Credentials{Username: "ana"})
		assert.ErrorIs(t, err, session.ErrLoginRejected)
		assert.Equal(t, session.PhaseLoggedOut, h.manager.Snapshot().Phase())

		_, err = h.store.Get(ctx)
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})
}

func TestManager_Logout(t *testing.T) {
	t.Run("idempotent", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("5"))

		for range 3 {
			h.manager.Logout()
			st := h.manager.Snapshot()
			assert.Nil(t, st.User)
			assert.Equal(t, 0, st.Favorites.Len())
			assert.Equal(t, session.PhaseLoggedOut, st.Phase())
		}

		_, err := h.store.Get(context.Background())
		assert.ErrorIs(t, err, credential.ErrNoCredential)
	})

	t.Run("before initialize marks ready", func(t *testing.T) {
		h := newHarness(t, "")
		h.manager.Logout()
		assert.Equal(t, session.StatusReady, h.manager.Snapshot().Status)
	})

	t.Run("log records carry the component once", func(t *testing.T) {
		var buf bytes.Buffer
		m := session.New(newFakeSessions(), &fakeFavorites{},
			session.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		)
		t.Cleanup(func() { _ = m.Close() })
		m.Logout()

		out := strings.TrimSpace(buf.String())
		require.NotEmpty(t, out)
		for _, line := range strings.Split(out, "\n") {
			assert.Equal(t, 1, strings.Count(line, `"component":"session"`), line)
		}
	})

	t.Run("makes no remote call", func(t *testing.T) {
		h := loggedIn(t)
		me, favCalls := h.sessions.meCalls, h.favs.callCount()
		h.manager.Logout()
		assert.Equal(t, me, h.sessions.meCalls)
		assert.Equal(t, favCalls, h.favs.callCount())
	})
}

func TestManager_ToggleFavorite(t *testing.T) {
	ctx := context.Background()

	t.Run("unauthenticated is a no-op", func(t *testing.T) {
		h := newHarness(t, "")
		require.NoError(t, h.manager.Initialize(ctx))

		res := h.manager.ToggleFavorite(ctx, movie{MovieID: "5"})
		assert.False(t, res.OK())
		assert.Equal(t, session.OutcomeUnauthenticated, res.Outcome)
		assert.ErrorIs(t, res.Err, session.ErrUnauthenticated)
		assert.Equal(t, 0, h.favs.callCount())
		assert.Equal(t, 0, h.manager.Snapshot().Favorites.Len())
	})

	t.Run("round trip", func(t *testing.T) {
		h := loggedIn(t)

		res := h.manager.ToggleFavorite(ctx, movie{MovieID: "42"})
		require.True(t, res.OK())
		assert.True(t, res.Favorite)
		assert.Equal(t, favorites.ID("42"), res.ID)
		assert.True(t, h.manager.IsFavorite(favorites.ID("42")))

		res = h.manager.ToggleFavorite(ctx, movie{MovieID: "42"})
		require.True(t, res.OK())
		assert.False(t, res.Favorite)
		assert.False(t, h.manager.IsFavorite(favorites.ID("42")))
	})

	t.Run("prefers the item id field", func(t *testing.T) {
		h := loggedIn(t)

		res := h.manager.ToggleFavorite(ctx, movie{MovieID: "5", ID: "99"})
		require.True(t, res.OK())
		assert.True(t, h.manager.IsFavorite(movie{MovieID: "5"}))
		assert.False(t, h.manager.IsFavorite(favorites.ID("99")))

		res = h.manager.ToggleFavorite(ctx, movie{ID: "99"})
		require.True(t, res.OK())
		assert.True(t, h.manager.IsFavorite(favorites.ID("99")))
	})

	t.Run("failed add rolls back", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("1"), favorites.Bare("2"))
		h.favs.addErr = detailError{detail: "Movie not found"}
		before := h.manager.Snapshot().Favorites

		res := h.manager.ToggleFavorite(ctx, movie{MovieID: "3"})
		assert.False(t, res.OK())
		assert.Equal(t, session.OutcomeRolledBack, res.Outcome)
		assert.False(t, res.Favorite)
		assert.True(t, h.manager.Snapshot().Favorites.Equal(before))
		assert.Equal(t, []string{"Movie not found"}, h.notifications())
	})

	t.Run("failed remove rolls back", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("5"))
		h.favs.removeErr = detailError{detail: "movie not favorited"}

		res := h.manager.ToggleFavorite(ctx, movie{MovieID: "5"})
		assert.Equal(t, session.OutcomeRolledBack, res.Outcome)
		assert.True(t, res.Favorite)
		assert.Equal(t, "movie not favorited", session.Message(res.Err))
		assert.True(t, h.manager.Snapshot().Favorites.Equal(favorites.NewSet("5")))
		assert.Equal(t, []string{"movie not favorited"}, h.notifications())
	})

	t.Run("invalid item", func(t *testing.T) {
		h := loggedIn(t)

		res := h.manager.ToggleFavorite(ctx, movie{})
		assert.Equal(t, session.OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, session.ErrInvalidItem)
		assert.ErrorIs(t, res.Err, favorites.ErrMissingID)
	})

	t.Run("optimistic state is visible while in flight", func(t *testing.T) {
		h := loggedIn(t)
		h.favs.gate = make(chan struct{})
		h.favs.entered = make(chan favorites.ID, 1)

		done := make(chan session.ToggleResult, 1)
		go func() { done <- h.manager.ToggleFavorite(ctx, favorites.ID("7")) }()

		<-h.favs.entered
		assert.True(t, h.manager.IsFavorite(favorites.ID("7")))

		second := h.manager.ToggleFavorite(ctx, favorites.ID("7"))
		assert.Equal(t, session.OutcomeInFlight, second.Outcome)
		assert.ErrorIs(t, second.Err, session.ErrToggleInFlight)
		assert.True(t, second.Favorite)

		close(h.favs.gate)
		res := <-done
		assert.True(t, res.OK())
		assert.True(t, h.manager.IsFavorite(favorites.ID("7")))
	})

	t.Run("different items proceed concurrently", func(t *testing.T) {
		h := loggedIn(t)
		h.favs.gate = make(chan struct{})
		h.favs.entered = make(chan favorites.ID, 2)

		results := make(chan session.ToggleResult, 2)
		for _, id := range []favorites.ID{"1", "2"} {
			go func() { results <- h.manager.ToggleFavorite(ctx, id) }()
		}
		<-h.favs.entered
		<-h.favs.entered
		close(h.favs.gate)

		for range 2 {
			assert.True(t, (<-results).OK())
		}
		assert.True(t, h.manager.Snapshot().Favorites.Equal(favorites.NewSet("1", "2")))
	})

	t.Run("logout during flight does not resurrect favorites", func(t *testing.T) {
		h := loggedIn(t)
		h.favs.gate = make(chan struct{})
		h.favs.entered = make(chan favorites.ID, 1)
		h.favs.addErr = errors.New("boom")

		done := make(chan session.ToggleResult, 1)
		go func() { done <- h.manager.ToggleFavorite(ctx, favorites.ID("7")) }()
		<-h.favs.entered

		h.manager.Logout()
		close(h.favs.gate)

		res := <-done
		assert.Equal(t, session.OutcomeFailed, res.Outcome)
		assert.ErrorIs(t, res.Err, session.ErrSessionChanged)
		st := h.manager.Snapshot()
		assert.Nil(t, st.User)
		assert.Equal(t, 0, st.Favorites.Len())
		assert.Empty(t, h.notifications())
	})
}

func TestManager_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("reloads favorites and keeps user", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("1"))
		h.favs.mu.Lock()
		h.favs.refs = []favorites.Ref{favorites.Bare("1"), favorites.Record("2", "")}
		h.favs.mu.Unlock()
		me := h.sessions.meCalls

		require.NoError(t, h.manager.Refresh(ctx))
		require.NoError(t, h.manager.Refresh(ctx))

		st := h.manager.Snapshot()
		assert.True(t, st.Favorites.Equal(favorites.NewSet("1", "2")))
		assert.Equal(t, "ana", st.User.Username)
		assert.Equal(t, me, h.sessions.meCalls)
	})

	t.Run("logged out is a no-op", func(t *testing.T) {
		h := newHarness(t, "")
		require.NoError(t, h.manager.Refresh(ctx))
		assert.Equal(t, 0, h.favs.callCount())
	})

	t.Run("failure keeps the current set", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("1"))
		h.favs.listErr = errors.New("unavailable")

		assert.Error(t, h.manager.Refresh(ctx))
		assert.True(t, h.manager.Snapshot().Favorites.Equal(favorites.NewSet("1")))
	})

	t.Run("keeps optimistic membership of in-flight toggles", func(t *testing.T) {
		h := loggedIn(t, favorites.Bare("1"))
		h.favs.gate = make(chan struct{})
		h.favs.entered = make(chan favorites.ID, 1)

		done := make(chan session.ToggleResult, 1)
		go func() { done <- h.manager.ToggleFavorite(ctx, favorites.ID("1")) }()
		<-h.favs.entered

		require.NoError(t, h.manager.Refresh(ctx))
		assert.False(t, h.manager.IsFavorite(favorites.ID("1")))

		close(h.favs.gate)
		assert.True(t, (<-done).OK())
		assert.False(t, h.manager.IsFavorite(favorites.ID("1")))
	})
}

func TestManager_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, "t0")
	h.sessions.users["t0"] = &session.User{ID: 1}
	h.favs.refs = []favorites.Ref{favorites.Bare("5")}

	sub := h.manager.Subscribe(ctx)
	first := <-sub.C()
	assert.Equal(t, session.StatusInitializing, first.Status)

	require.NoError(t, h.manager.Initialize(ctx))

	select {
	case st := <-sub.C():
		assert.Equal(t, session.StatusReady, st.Status)
		assert.True(t, st.Favorites.Has("5"))
	case <-time.After(time.Second):
		t.Fatal("no snapshot after initialize")
	}

	// Snapshots are copies.
	snap := h.manager.Snapshot()
	snap.Favorites.Add("999")
	snap.User.Username = "mallory"
	assert.False(t, h.manager.IsFavorite(favorites.ID("999")))
	assert.NotEqual(t, "mallory", h.manager.Snapshot().User.Username)

	require.NoError(t, h.manager.Close())
	_, ok := <-sub.C()
	assert.False(t, ok)
}
