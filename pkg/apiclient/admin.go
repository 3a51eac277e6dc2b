package apiclient

import (
	"context"
	"strconv"

	"github.com/dmitrymomot/moviekit/pkg/session"
)

// ListUsers returns every account. Requires an admin token.
func (c *Client) ListUsers(ctx context.Context) ([]session.User, error) {
	var users []session.User
	if err := c.get(ctx, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// PromoteUser grants admin rights.
func (c *Client) PromoteUser(ctx context.Context, userID int64) (Ack, error) {
	return c.adminAction(ctx, userID, "promote")
}

// DemoteUser revokes admin rights.
func (c *Client) DemoteUser(ctx context.Context, userID int64) (Ack, error) {
	return c.adminAction(ctx, userID, "demote")
}

func (c *Client) adminAction(ctx context.Context, userID int64, action string) (Ack, error) {
	if userID <= 0 {
		return Ack{}, ErrMissingArgument
	}
	var ack Ack
	path := "/admin/users/" + strconv.FormatInt(userID, 10) + "/" + action
	err := c.post(ctx, path, nil, struct{}{}, &ack)
	return ack, err
}
