package session

import "errors"

var (
	// ErrUnauthenticated indicates the operation requires a signed-in user
	ErrUnauthenticated = errors.New("session.unauthenticated")

	// ErrToggleInFlight indicates a toggle for the same item is still running
	ErrToggleInFlight = errors.New("session.toggle_in_flight")

	// ErrInvalidItem indicates an item without a usable identifier
	ErrInvalidItem = errors.New("session.invalid_item")

	// ErrNoToken indicates a successful login response without a token
	ErrNoToken = errors.New("session.no_token")

	// ErrLoginRejected indicates the freshly issued token did not resolve to a user
	ErrLoginRejected = errors.New("session.login_rejected")

	// ErrSessionChanged indicates the session was replaced while a call was running
	ErrSessionChanged = errors.New("session.changed")
)
