package session

import "github.com/dmitrymomot/moviekit/pkg/favorites"

// Status tells whether the startup restore has finished.
type Status uint8

const (
	StatusInitializing Status = iota
	StatusReady
)

func (s Status) String() string {
	if s == StatusReady {
		return "ready"
	}
	return "initializing"
}

// Phase is the session's position in its state machine.
type Phase uint8

const (
	PhaseInitializing Phase = iota
	PhaseLoggedOut
	PhaseLoggedIn
)

func (p Phase) String() string {
	switch p {
	case PhaseLoggedOut:
		return "logged_out"
	case PhaseLoggedIn:
		return "logged_in"
	default:
		return "initializing"
	}
}

// State is an immutable snapshot of the session published to consumers.
// Favorites is never nil and is empty whenever User is nil.
type State struct {
	User      *User
	Favorites favorites.Set
	Status    Status
}

func (s State) IsAuthenticated() bool { return s.User != nil }

// IsFavorite reports whether item is in the favorite set. Items without a
// usable identifier are never favorites.
func (s State) IsFavorite(item any) bool {
	id, err := favorites.IDOf(item)
	if err != nil {
		return false
	}
	return s.Favorites.Has(id)
}

// Phase derives the state machine position from the snapshot.
func (s State) Phase() Phase {
	switch {
	case s.User != nil:
		return PhaseLoggedIn
	case s.Status == StatusReady:
		return PhaseLoggedOut
	default:
		return PhaseInitializing
	}
}
