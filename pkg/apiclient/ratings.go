package apiclient

import (
	"context"
	"errors"
	"net/url"

	"github.com/dmitrymomot/moviekit/pkg/favorites"
)

// ErrInvalidRating is returned for scores outside MinRating..MaxRating.
var ErrInvalidRating = errors.New("apiclient.invalid_rating")

const (
	MinRating = 1
	MaxRating = 5

	// recommendThreshold is the lowest score that seeds profile recommendations.
	recommendThreshold = 4
)

// Rating is a user's score for a movie.
type Rating struct {
	ID      int64        `json:"id,omitempty"`
	UserID  int64        `json:"user_id,omitempty"`
	MovieID favorites.ID `json:"movie_id"`
	Rating  float64      `json:"rating"`
}

// AddRating records the signed-in user's score for a movie.
func (c *Client) AddRating(ctx context.Context, movieID favorites.ID, score float64) (Rating, error) {
	if movieID == "" {
		return Rating{}, ErrMissingArgument
	}
	if score < MinRating || score > MaxRating {
		return Rating{}, ErrInvalidRating
	}
	var out Rating
	if err := c.post(ctx, "/ratings", nil, Rating{MovieID: movieID, Rating: score}, &out); err != nil {
		return Rating{}, err
	}
	return out, nil
}

// RatingsByMovie lists all ratings for a movie.
func (c *Client) RatingsByMovie(ctx context.Context, movieID favorites.ID) ([]Rating, error) {
	if movieID == "" {
		return nil, ErrMissingArgument
	}
	var out []Rating
	if err := c.get(ctx, "/ratings/movie/"+url.PathEscape(movieID.String()), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MyRatings lists the signed-in user's ratings.
func (c *Client) MyRatings(ctx context.Context) ([]Rating, error) {
	var out []Rating
	if err := c.get(ctx, "/ratings/user", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BestRated returns the highest rating that is good enough to seed
// recommendations. Ties keep the later entry.
func BestRated(ratings []Rating) (Rating, bool) {
	if len(ratings) == 0 {
		return Rating{}, false
	}
	best := ratings[0]
	for _, r := range ratings[1:] {
		if r.Rating >= best.Rating {
			best = r
		}
	}
	return best, best.Rating >= recommendThreshold
}
