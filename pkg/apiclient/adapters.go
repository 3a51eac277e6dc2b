package apiclient

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/logger"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

// SessionService returns the client as a session.SessionService.
func (c *Client) SessionService() session.SessionService { return sessionService{c} }

// FavoritesService returns the client as a session.FavoritesService.
func (c *Client) FavoritesService() session.FavoritesService { return favoritesService{c} }

type sessionService struct{ c *Client }

func (s sessionService) CurrentUser(ctx context.Context, token string) (*session.User, error) {
	return s.c.CurrentUser(ctx, token)
}

func (s sessionService) Login(ctx context.Context, creds session.Credentials) (session.LoginResult, error) {
	return s.c.Login(ctx, creds)
}

type favoritesService struct{ c *Client }

func (f favoritesService) List(ctx context.Context) ([]favorites.Ref, error) {
	return f.c.ListFavorites(ctx)
}

func (f favoritesService) Add(ctx context.Context, id favorites.ID) error {
	ack, err := f.c.AddFavorite(ctx, id)
	if err == nil {
		f.c.log.DebugContext(ctx, "favorite added", logger.MovieID(id), slog.String("message", ack.Message))
	}
	return err
}

func (f favoritesService) Remove(ctx context.Context, id favorites.ID) error {
	ack, err := f.c.RemoveFavorite(ctx, id)
	if err == nil {
		f.c.log.DebugContext(ctx, "favorite removed", logger.MovieID(id), slog.String("message", ack.Message))
	}
	return err
}
