package apiclient

import (
	"context"
	"net/url"
	"strings"

	"github.com/dmitrymomot/moviekit/pkg/session"
)

// RegisterRequest is the sign-up form.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*session.User, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, ErrMissingArgument
	}
	var user session.User
	if err := c.post(ctx, "/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token. Storing the token is the
// caller's job.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.LoginResult, error) {
	var res session.LoginResult
	if err := c.post(ctx, "/auth/login", nil, creds, &res); err != nil {
		return session.LoginResult{}, err
	}
	return res, nil
}

// CurrentUser resolves token to its user. An unknown or expired token yields
// a nil user and a nil error.
func (c *Client) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	if token == "" {
		return nil, nil
	}

	// A 200 with an empty or null body leaves user nil.
	var user *session.User
	err := c.get(withToken(ctx, token), "/auth/me", url.Values{"token": {token}}, &user)
	if err != nil {
		if IsUnauthorized(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
