package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/moviekit/pkg/apiclient"
	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

// printer writes command results either as aligned text or as JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

// result prints v as JSON in JSON mode and calls text otherwise.
func (p *printer) result(v any, text func(w io.Writer)) error {
	if p.json {
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (p *printer) movies(movies []apiclient.Movie) error {
	return p.result(movies, func(w io.Writer) {
		if len(movies) == 0 {
			fmt.Fprintln(w, "no movies")
			return
		}
		fmt.Fprintln(w, "ID\tTITLE\tRATING\tGENRES")
		for _, m := range movies {
			fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n", m.Key(), m.Title, m.VoteAverage, m.Genres)
		}
	})
}

func (p *printer) user(u *session.User) error {
	return p.result(u, func(w io.Writer) {
		fmt.Fprintf(w, "id:\t%d\n", u.ID)
		fmt.Fprintf(w, "username:\t%s\n", u.Username)
		if u.FullName != "" {
			fmt.Fprintf(w, "name:\t%s\n", u.FullName)
		}
		if u.Email != "" {
			fmt.Fprintf(w, "email:\t%s\n", u.Email)
		}
		fmt.Fprintf(w, "admin:\t%t\n", u.IsAdmin)
	})
}

// message returns the text shown for a failed command.
func message(err error) string {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return "not signed in, run: moviectl login"
	case errors.Is(err, errAdminOnly):
		return "this command requires an admin account"
	case errors.Is(err, credential.ErrUnknownBackend):
		return err.Error()
	case errors.Is(err, apiclient.ErrRequestFailed):
		return "could not reach the API"
	}
	return strings.TrimSpace(session.Message(err))
}
