package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/moviekit/pkg/broadcast"
	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/logger"
)

// Manager owns the session state and is its only writer. All methods are
// safe for concurrent use; the lock is never held across a remote call.
type Manager struct {
	sessions SessionService
	favs     FavoritesService
	store    credential.Store
	log      *slog.Logger
	notify   NotifyFunc
	states   *broadcast.Broadcaster[State]
	initOnce sync.Once

	mu        sync.Mutex
	user      *User
	favorites favorites.Set
	status    Status
	pending   map[favorites.ID]*pendingToggle
	// epoch changes whenever the session is replaced (restore or logout).
	// Work started under an older epoch must not write into the new session.
	epoch uint64
	// logouts counts Logout calls so a restore racing with a logout loses.
	logouts uint64
}

// New creates a session manager. Both services are required.
func New(sessions SessionService, favs FavoritesService, opts ...Option) *Manager {
	if sessions == nil || favs == nil {
		// Fail fast on misconfiguration
		panic("session: session and favorites services are required")
	}

	m := &Manager{
		sessions:  sessions,
		favs:      favs,
		favorites: favorites.NewSet(),
		pending:   make(map[favorites.ID]*pendingToggle),
		states:    broadcast.New[State](),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = credential.NewMemoryStore()
	}
	if m.log == nil {
		m.log = slog.Default()
	}
	m.log = m.log.With(logger.Component("session"))
	if m.notify == nil {
		m.notify = func(ctx context.Context, id favorites.ID, message string) {
			m.log.WarnContext(ctx, "favorite change reverted", logger.MovieID(id), slog.String("message", message))
		}
	}

	m.publishLocked()
	return m
}

// Initialize restores the session from the stored token. Only the first
// call does any work; later calls return immediately. It never leaves the
// manager in StatusInitializing and never fails because of the remote side.
func (m *Manager) Initialize(ctx context.Context) error {
	m.initOnce.Do(func() {
		m.bootstrap(ctx)
	})
	return nil
}

// Snapshot returns the current state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe streams state snapshots, starting with the current one.
func (m *Manager) Subscribe(ctx context.Context) *broadcast.Subscription[State] {
	return m.states.Subscribe(ctx)
}

// IsFavorite reports whether item is currently a favorite.
func (m *Manager) IsFavorite(item any) bool {
	return m.Snapshot().IsFavorite(item)
}

// Login exchanges credentials for a token, persists it and restores the
// session from fresh remote calls. Remote errors are returned unchanged so
// the caller can show them; the session stays as it was.
func (m *Manager) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	res, err := m.sessions.Login(ctx, creds)
	if err != nil {
		m.log.InfoContext(ctx, "login failed", slog.String("username", creds.Username), logger.Error(err))
		return res, err
	}
	if res.AccessToken == "" {
		return res, ErrNoToken
	}

	if err := m.store.Set(ctx, res.AccessToken); err != nil {
		m.log.ErrorContext(ctx, "persist credential", logger.Error(err))
		return res, err
	}

	m.bootstrap(ctx)

	st := m.Snapshot()
	if !st.IsAuthenticated() {
		return res, ErrLoginRejected
	}
	m.log.InfoContext(ctx, "logged in", logger.Event("login"), logger.UserID(st.User.ID))
	return res, nil
}

// Logout forgets the token, the user and the favorites. It makes no remote
// call and cannot fail.
func (m *Manager) Logout() {
	if err := m.store.Clear(context.Background()); err != nil {
		m.log.Error("clear credential", logger.Error(err))
	}

	m.mu.Lock()
	m.logouts++
	m.resetLocked(nil, favorites.NewSet())
	if m.status == StatusInitializing {
		m.status = StatusReady
	}
	m.publishLocked()
	m.mu.Unlock()

	m.log.Info("logged out", logger.Event("logout"))
}

// ToggleFavorite flips item's membership locally, then asks the server to
// do the same. If the server refuses, the local change is reverted exactly
// and the user is notified.
func (m *Manager) ToggleFavorite(ctx context.Context, item any) ToggleResult {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return ToggleResult{Outcome: OutcomeUnauthenticated, Err: ErrUnauthenticated}
	}

	id, err := favorites.IDOf(item)
	if err != nil {
		m.mu.Unlock()
		return ToggleResult{Outcome: OutcomeFailed, Err: errors.Join(ErrInvalidItem, err)}
	}

	wasFavorite := m.favorites.Has(id)
	if _, busy := m.pending[id]; busy {
		m.mu.Unlock()
		return ToggleResult{Outcome: OutcomeInFlight, ID: id, Favorite: wasFavorite, Err: ErrToggleInFlight}
	}

	op := &pendingToggle{target: !wasFavorite}
	m.pending[id] = op
	epoch := m.epoch
	setMembership(m.favorites, id, !wasFavorite)
	m.publishLocked()
	m.mu.Unlock()

	if wasFavorite {
		err = m.favs.Remove(ctx, id)
	} else {
		err = m.favs.Add(ctx, id)
	}

	m.mu.Lock()
	if m.pending[id] == op {
		delete(m.pending, id)
	}

	if m.epoch != epoch {
		// The session this toggle belonged to is gone; leave the new one alone.
		favorite := m.favorites.Has(id)
		m.mu.Unlock()
		if err != nil {
			return ToggleResult{Outcome: OutcomeFailed, ID: id, Favorite: favorite, Err: errors.Join(ErrSessionChanged, err)}
		}
		return ToggleResult{Outcome: OutcomeSynced, ID: id, Favorite: favorite}
	}

	if err == nil {
		m.mu.Unlock()
		m.log.DebugContext(ctx, "favorite synced", logger.MovieID(id), slog.Bool("favorite", !wasFavorite))
		return ToggleResult{Outcome: OutcomeSynced, ID: id, Favorite: !wasFavorite}
	}

	setMembership(m.favorites, id, wasFavorite)
	m.publishLocked()
	m.mu.Unlock()

	msg := Message(err)
	m.log.WarnContext(ctx, "favorite sync failed", logger.MovieID(id), logger.Error(err))
	m.notify(ctx, id, msg)

	return ToggleResult{Outcome: OutcomeRolledBack, ID: id, Favorite: wasFavorite, Err: err}
}

// Refresh reloads the favorite set of the signed-in user. The user is left
// untouched. On failure the current set is kept and the error returned.
// Toggles still in flight keep their optimistic membership.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil
	}
	epoch := m.epoch
	m.mu.Unlock()

	set, err := m.listFavorites(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "refresh favorites", logger.Error(err))
		return err
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return nil
	}
	for id, op := range m.pending {
		setMembership(set, id, op.target)
	}
	m.favorites = set
	m.publishLocked()
	m.mu.Unlock()
	return nil
}

// Close stops publishing snapshots and ends all subscriptions.
func (m *Manager) Close() error {
	return m.states.Close()
}

// bootstrap rebuilds the session from the stored token and always marks the
// manager ready when it returns.
func (m *Manager) bootstrap(ctx context.Context) {
	m.mu.Lock()
	logouts := m.logouts
	m.mu.Unlock()

	user, set := m.restore(ctx)

	m.mu.Lock()
	if m.logouts == logouts {
		m.resetLocked(user, set)
	}
	m.status = StatusReady
	m.publishLocked()
	m.mu.Unlock()
}

// restore resolves the stored token to a user and that user's favorites.
// An unusable token is removed from the store.
func (m *Manager) restore(ctx context.Context) (*User, favorites.Set) {
	token, err := m.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, credential.ErrNoCredential) {
			m.log.WarnContext(ctx, "read credential", logger.Error(err))
		}
		return nil, favorites.NewSet()
	}

	user, err := m.sessions.CurrentUser(ctx, token)
	if err != nil || user == nil {
		if err != nil {
			m.log.InfoContext(ctx, "restore session", logger.Error(err))
		}
		if err := m.store.Clear(ctx); err != nil {
			m.log.ErrorContext(ctx, "clear credential", logger.Error(err))
		}
		return nil, favorites.NewSet()
	}

	set, err := m.listFavorites(ctx)
	if err != nil {
		m.log.WarnContext(ctx, "load favorites", logger.UserID(user.ID), logger.Error(err))
		return user, favorites.NewSet()
	}
	return user, set
}

func (m *Manager) listFavorites(ctx context.Context) (favorites.Set, error) {
	refs, err := m.favs.List(ctx)
	if err != nil {
		return nil, err
	}
	set, err := favorites.NormalizeAll(refs)
	if err != nil {
		m.log.WarnContext(ctx, "skipped malformed favorites", logger.Error(err))
	}
	return set, nil
}

// resetLocked replaces the session and starts a new epoch. Caller holds mu.
func (m *Manager) resetLocked(user *User, set favorites.Set) {
	if user == nil {
		set = favorites.NewSet()
	}
	m.user = user
	m.favorites = set
	m.pending = make(map[favorites.ID]*pendingToggle)
	m.epoch++
}

// publishLocked hands a snapshot to subscribers. Publishing under mu keeps
// snapshots in commit order; Publish never blocks. Caller holds mu.
func (m *Manager) publishLocked() {
	m.states.Publish(m.snapshotLocked())
}

// snapshotLocked copies the state. Caller holds mu.
func (m *Manager) snapshotLocked() State {
	st := State{Favorites: m.favorites.Clone(), Status: m.status}
	if m.user != nil {
		u := *m.user
		st.User = &u
	}
	return st
}

func setMembership(set favorites.Set, id favorites.ID, member bool) {
	if member {
		set.Add(id)
	} else {
		set.Remove(id)
	}
}
