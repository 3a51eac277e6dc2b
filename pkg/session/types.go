package session

import (
	"context"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
)

// User is the signed-in account as reported by the session service.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsAdmin  bool   `json:"is_admin"`
}

// Credentials are what the user types into the login form.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the session service's answer to a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// SessionService authenticates credentials and resolves tokens to users.
type SessionService interface {
	// CurrentUser returns the user owning token, or nil without error when
	// the token is invalid or expired.
	CurrentUser(ctx context.Context, token string) (*User, error)

	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds Credentials) (LoginResult, error)
}

// FavoritesService stores the signed-in user's favorite movie ids. The
// bearer token is attached by the transport, not passed here.
type FavoritesService interface {
	List(ctx context.Context) ([]favorites.Ref, error)
	Add(ctx context.Context, id favorites.ID) error
	Remove(ctx context.Context, id favorites.ID) error
}
