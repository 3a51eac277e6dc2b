package apiclient

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
)

// Movie is a catalog entry. Favorites entries share this shape and may carry
// MovieID in addition to ID.
type Movie struct {
	ID          favorites.ID `json:"id"`
	MovieID     favorites.ID `json:"movie_id,omitempty"`
	Title       string       `json:"title"`
	Overview    string       `json:"overview,omitempty"`
	Poster      string       `json:"poster,omitempty"`
	ReleaseDate string       `json:"release_date,omitempty"`
	VoteAverage float64      `json:"vote_average"`
	Genres      StringList   `json:"genres,omitempty"`
	Cast        StringList   `json:"cast,omitempty"`
	Crew        StringList   `json:"crew,omitempty"`
	Keywords    StringList   `json:"keywords,omitempty"`
}

// FavoriteRef implements favorites.Identifiable.
func (m Movie) FavoriteRef() favorites.Ref {
	return favorites.Record(m.MovieID.String(), m.ID.String())
}

// Key returns the canonical id of the movie, or an empty ID when it has none.
func (m Movie) Key() favorites.ID {
	id, err := favorites.Normalize(m.FavoriteRef())
	if err != nil {
		return ""
	}
	return id
}

// StringList is a list field the API sends either as a JSON array or as a
// comma-separated string.
type StringList []string

// UnmarshalJSON accepts an array of strings (or of objects with a "name"),
// a comma-separated string, or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = splitList(s)
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			if name := listItem(item); name != "" {
				out = append(out, name)
			}
		}
		*l = out
		return nil
	}
	return errors.New("apiclient: list must be an array or a string")
}

// String joins the list with ", ".
func (l StringList) String() string { return strings.Join(l, ", ") }

func splitList(s string) StringList {
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func listItem(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return strings.TrimSpace(s)
		}
	case '{':
		var named struct {
			Name string `json:"name"`
		}
		if json.Unmarshal(raw, &named) == nil {
			return strings.TrimSpace(named.Name)
		}
	}
	return ""
}

// SearchResult is the answer to a search query.
type SearchResult struct {
	Results         []Movie `json:"search_results"`
	Recommendations []Movie `json:"recommendations"`
}

// HomeFeed is the personalized landing page feed.
type HomeFeed struct {
	Recommendations []Movie `json:"recommendations"`
}

// SearchMovies searches the catalog by free text.
func (c *Client) SearchMovies(ctx context.Context, query string) (SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResult{}, ErrMissingArgument
	}
	var res SearchResult
	if err := c.get(ctx, "/movies/search", url.Values{"query": {query}}, &res); err != nil {
		return SearchResult{}, err
	}
	return res, nil
}

// GetMovie fetches one movie by id.
func (c *Client) GetMovie(ctx context.Context, id favorites.ID) (Movie, error) {
	if id == "" {
		return Movie{}, ErrMissingArgument
	}
	var m Movie
	if err := c.get(ctx, "/movies/"+url.PathEscape(id.String()), nil, &m); err != nil {
		return Movie{}, err
	}
	return m, nil
}

// Home returns the landing feed. It is personalized when a credential is
// stored and generic otherwise.
func (c *Client) Home(ctx context.Context) (HomeFeed, error) {
	var feed HomeFeed
	if err := c.get(ctx, "/movies/home", nil, &feed); err != nil {
		return HomeFeed{}, err
	}
	return feed, nil
}

// Recommendations lists movies similar to the given one.
func (c *Client) Recommendations(ctx context.Context, id favorites.ID) ([]Movie, error) {
	if id == "" {
		return nil, ErrMissingArgument
	}
	var movies []Movie
	if err := c.get(ctx, "/movies/"+url.PathEscape(id.String())+"/recommendations", nil, &movies); err != nil {
		return nil, err
	}
	return movies, nil
}
