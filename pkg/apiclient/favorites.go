package apiclient

import (
	"bytes"
	"context"
	"errors"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
)

// Ack is the message body returned by mutating endpoints.
type Ack struct {
	Message string `json:"message"`
}

// ListFavorites returns the raw favorites entries of the signed-in user. The
// server answers either {"favorites": [...]} or a bare array. Entries that
// cannot be read are returned as zero Refs, which fail normalization.
func (c *Client) ListFavorites(ctx context.Context) ([]favorites.Ref, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/favorites/", nil, &raw); err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := decodeFavorites(raw, &entries); err != nil {
		return nil, err
	}

	refs := make([]favorites.Ref, 0, len(entries))
	for _, entry := range entries {
		var ref favorites.Ref
		if err := json.Unmarshal(entry, &ref); err != nil {
			ref = favorites.Ref{}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// FavoriteMovies returns the favorites list as movies. Entries sent as bare
// ids produce a Movie with only ID set.
func (c *Client) FavoriteMovies(ctx context.Context) ([]Movie, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/favorites/", nil, &raw); err != nil {
		return nil, err
	}
	var entries []json.RawMessage
	if err := decodeFavorites(raw, &entries); err != nil {
		return nil, err
	}

	movies := make([]Movie, 0, len(entries))
	for _, entry := range entries {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 {
			continue
		}
		var m Movie
		if entry[0] == '{' {
			if err := json.Unmarshal(entry, &m); err != nil {
				return nil, errors.Join(ErrDecodeResponse, err)
			}
		} else if err := json.Unmarshal(entry, &m.ID); err != nil {
			return nil, errors.Join(ErrDecodeResponse, err)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

// AddFavorite marks a movie as favorite.
func (c *Client) AddFavorite(ctx context.Context, id favorites.ID) (Ack, error) {
	if id == "" {
		return Ack{}, ErrMissingArgument
	}
	var ack Ack
	err := c.post(ctx, "/favorites", url.Values{"movie_id": {id.String()}}, struct{}{}, &ack)
	return ack, err
}

// RemoveFavorite unmarks a movie.
func (c *Client) RemoveFavorite(ctx context.Context, id favorites.ID) (Ack, error) {
	if id == "" {
		return Ack{}, ErrMissingArgument
	}
	var ack Ack
	err := c.delete(ctx, "/favorites/"+url.PathEscape(id.String()), &ack)
	return ack, err
}

// decodeFavorites unpacks either envelope shape into out, which must point
// to a slice. Any other shape decodes to an empty list.
func decodeFavorites(raw json.RawMessage, out any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '[':
	case '{':
		var envelope struct {
			Favorites json.RawMessage `json:"favorites"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return errors.Join(ErrDecodeResponse, err)
		}
		raw = bytes.TrimSpace(envelope.Favorites)
		if len(raw) == 0 || raw[0] != '[' {
			return nil
		}
	default:
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}
