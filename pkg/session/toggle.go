package session

import "github.com/dmitrymomot/moviekit/pkg/favorites"

// Outcome classifies how a ToggleFavorite call ended.
type Outcome uint8

const (
	// OutcomeSynced: the remote call succeeded and the local change stands.
	OutcomeSynced Outcome = iota + 1
	// OutcomeUnauthenticated: nobody is signed in; nothing was done.
	OutcomeUnauthenticated
	// OutcomeRolledBack: the remote call failed and the local change was reverted.
	OutcomeRolledBack
	// OutcomeInFlight: a toggle for the same item is still running; nothing was done.
	OutcomeInFlight
	// OutcomeFailed: the item was unusable or the session changed mid-call.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeUnauthenticated:
		return "unauthenticated"
	case OutcomeRolledBack:
		return "rolled_back"
	case OutcomeInFlight:
		return "in_flight"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ToggleResult reports the end state of a ToggleFavorite call.
type ToggleResult struct {
	Outcome Outcome
	ID      favorites.ID
	// Favorite is the item's membership once the call returned.
	Favorite bool
	Err      error
}

// OK reports whether the toggle was synced with the server.
func (r ToggleResult) OK() bool { return r.Outcome == OutcomeSynced }

// pendingToggle marks an in-flight toggle. Identity matters: a completing
// toggle only clears the entry it created.
type pendingToggle struct {
	target bool
}
