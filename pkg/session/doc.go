// Package session keeps the client's belief about who is signed in and which
// movies they have favorited, and keeps that belief consistent with the
// remote API.
//
// # Architecture
//
// A Manager owns the in-memory session state (user, favorite ids, status)
// and is the only writer of it. It talks to two remote collaborators through
// the SessionService and FavoritesService interfaces and persists the bearer
// token in a credential.Store. Consumers read immutable State snapshots,
// either on demand with Snapshot or as a stream with Subscribe.
//
//	           Login / Logout / ToggleFavorite / Refresh
//	┌──────────┐ ──────────────────────────────► ┌─────────┐ ──► SessionService
//	│ Consumer │                                 │ Manager │ ──► FavoritesService
//	└──────────┘ ◄────────── State ───────────── └─────────┘ ──► credential.Store
//
// # Lifecycle
//
// The entry point constructs the Manager, calls Initialize once and waits
// for it before showing anything that depends on the session. Initialize
// restores the session from a stored token: it fetches the profile and then
// the favorites. Any failure along the way, including an expired token,
// resolves to a signed-out session; Initialize always ends with
// State.Status == StatusReady.
//
//	m := session.New(api.SessionService(), api.FavoritesService(),
//	    session.WithCredentialStore(store),
//	    session.WithLogger(log),
//	)
//	defer m.Close()
//
//	if err := m.Initialize(ctx); err != nil {
//	    return err
//	}
//
// # Favorites
//
// ToggleFavorite updates local state before the remote call returns and
// reverts it exactly if the call fails. Only one toggle per movie may be in
// flight; a second one is rejected with OutcomeInFlight instead of racing.
// The typed ToggleResult tells "not signed in" apart from "sync failed".
//
// # Error Handling
//
//   - ErrUnauthenticated  – operation needs a signed-in user
//   - ErrToggleInFlight   – a toggle for the same movie is still running
//   - ErrInvalidItem      – the item carries no usable identifier
//   - ErrNoToken          – login succeeded without returning a token
//   - ErrLoginRejected    – the new token was not accepted by the profile call
//   - ErrSessionChanged   – the session was replaced while a call was running
//
// Remote failures are returned as-is; Message extracts the text to show.
// Nothing in this package retries.
package session
