package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/moviekit/pkg/apiclient"
	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/environment"
	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/logger"
	"github.com/dmitrymomot/moviekit/pkg/redis"
	"github.com/dmitrymomot/moviekit/pkg/requestid"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

var (
	errUsage     = errors.New("usage")
	errAdminOnly = errors.New("admin only")
)

type globalFlags struct {
	apiURL   string
	backend  string
	logLevel string
	json     bool
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":     {"login [-u user] [-p password]", "sign in and remember the session", cmdLogin},
	"logout":    {"logout", "forget the stored session", cmdLogout},
	"whoami":    {"whoami", "show the signed-in user", cmdWhoami},
	"favorites": {"favorites", "list favorite movies", cmdFavorites},
	"toggle":    {"toggle <movie-id>...", "add or remove movies from favorites", cmdToggle},
	"refresh":   {"refresh", "reload favorites from the server", cmdRefresh},
	"search":    {"search <query>", "search the catalog", cmdSearch},
	"movie":     {"movie <movie-id>", "show movie details", cmdMovie},
	"home":      {"home", "show the home feed", cmdHome},
	"recs":      {"recs <movie-id>", "list movies similar to one", cmdRecs},
	"rate":      {"rate <movie-id> <1-5>", "rate a movie", cmdRate},
	"ratings":   {"ratings [--movie id]", "list your ratings or a movie's ratings", cmdRatings},
	"profile":   {"profile", "show favorites and picks based on your best rating", cmdProfile},
	"register":  {"register --username u --email e [--full-name n] [-p password]", "create an account", cmdRegister},
	"admin":     {"admin users|promote <user-id>|demote <user-id>", "manage accounts", cmdAdmin},
	"watch":     {"watch", "print session changes until interrupted", cmdWatch},
	"doctor":    {"doctor", "check API and credential store connectivity", cmdDoctor},
}

// execute parses global flags, builds the app, restores the session and
// dispatches to the subcommand.
func execute(ctx context.Context, cfg appConfig, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var g globalFlags
	fs := pflag.NewFlagSet("moviectl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&g.apiURL, "api-url", "", "API base URL (overrides API_BASE_URL)")
	fs.StringVar(&g.backend, "store", "", "credential backend: memory, file or redis (overrides CREDENTIAL_BACKEND)")
	fs.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.BoolVar(&g.json, "json", false, "print results as JSON")
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 || rest[0] == "help" {
		printUsage(stderr, fs)
		return pflag.ErrHelp
	}

	cmd, ok := commands[rest[0]]
	if !ok {
		printUsage(stderr, fs)
		return fmt.Errorf("unknown command %q", rest[0])
	}

	ctx = requestid.WithContext(ctx, requestid.New())
	a, err := newApp(ctx, cfg, g, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer a.close()
	ctx = environment.WithContext(ctx, a.env)

	if err := a.session.Initialize(ctx); err != nil {
		return err
	}

	err = cmd.run(ctx, a, rest[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("usage: moviectl %s", cmd.usage)
	}
	return err
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Usage: moviectl [flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].help)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func subFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// readSecret returns the flag value or, when empty, the first line of stdin.
func readSecret(a *app, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func cmdLogin(ctx context.Context, a *app, args []string) error {
	var creds session.Credentials
	var password string
	fs := subFlags("login")
	fs.StringVarP(&creds.Username, "username", "u", "", "account name")
	fs.StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}
	if creds.Username == "" {
		if fs.NArg() == 0 {
			return errUsage
		}
		creds.Username = fs.Arg(0)
	}

	var err error
	if creds.Password, err = readSecret(a, password); err != nil {
		return err
	}

	if _, err := a.session.Login(ctx, creds); err != nil {
		return err
	}
	st := a.session.Snapshot()
	return a.out.result(st.User, func(w io.Writer) {
		fmt.Fprintf(w, "signed in as %s (%d favorites)\n", st.User.Username, st.Favorites.Len())
	})
}

func cmdLogout(_ context.Context, a *app, _ []string) error {
	a.session.Logout()
	return a.out.result(map[string]bool{"logged_out": true}, func(w io.Writer) {
		fmt.Fprintln(w, "signed out")
	})
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}
	return a.out.user(user)
}

func cmdFavorites(ctx context.Context, a *app, _ []string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	movies, err := a.client.FavoriteMovies(ctx)
	if err != nil {
		return err
	}
	return a.out.movies(movies)
}

type toggleLine struct {
	ID       favorites.ID `json:"id"`
	Outcome  string       `json:"outcome"`
	Favorite bool         `json:"favorite"`
	Error    string       `json:"error,omitempty"`
}

func cmdToggle(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	if _, err := a.requireUser(); err != nil {
		return err
	}

	lines := make([]toggleLine, 0, len(args))
	var failed int
	for _, arg := range args {
		res := a.session.ToggleFavorite(ctx, arg)
		line := toggleLine{ID: res.ID, Outcome: res.Outcome.String(), Favorite: res.Favorite}
		if res.ID == "" {
			line.ID = favorites.ID(arg)
		}
		if res.Err != nil {
			line.Error = message(res.Err)
		}
		if !res.OK() {
			failed++
		}
		lines = append(lines, line)
	}

	err := a.out.result(lines, func(w io.Writer) {
		for _, l := range lines {
			switch {
			case l.Error != "":
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Outcome, l.Error)
			case l.Favorite:
				fmt.Fprintf(w, "%s\tadded\n", l.ID)
			default:
				fmt.Fprintf(w, "%s\tremoved\n", l.ID)
			}
		}
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d toggles failed", failed, len(args))
	}
	return nil
}

func cmdRefresh(ctx context.Context, a *app, _ []string) error {
	if _, err := a.requireUser(); err != nil {
		return err
	}
	if err := a.session.Refresh(ctx); err != nil {
		return err
	}
	ids := a.session.Snapshot().Favorites.Sorted()
	return a.out.result(ids, func(w io.Writer) {
		fmt.Fprintf(w, "%d favorites\n", len(ids))
	})
}

func cmdSearch(ctx context.Context, a *app, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return errUsage
	}
	res, err := a.client.SearchMovies(ctx, query)
	if err != nil {
		return err
	}
	if a.out.json {
		return a.out.result(res, nil)
	}
	if err := a.out.movies(res.Results); err != nil {
		return err
	}
	if len(res.Recommendations) > 0 {
		fmt.Fprintln(a.out.w, "\nYou may also like:")
		return a.out.movies(res.Recommendations)
	}
	return nil
}

func cmdMovie(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	m, err := a.client.GetMovie(ctx, favorites.ID(args[0]))
	if err != nil {
		return err
	}
	fav := a.session.IsFavorite(m)
	return a.out.result(m, func(w io.Writer) {
		fmt.Fprintf(w, "%s\t(%s)\n", m.Title, m.Key())
		fmt.Fprintf(w, "rating:\t%.1f/10\n", m.VoteAverage)
		if len(m.Genres) > 0 {
			fmt.Fprintf(w, "genres:\t%s\n", m.Genres)
		}
		if len(m.Cast) > 0 {
			fmt.Fprintf(w, "cast:\t%s\n", strings.Join(head(m.Cast, 5), ", "))
		}
		if len(m.Crew) > 0 {
			fmt.Fprintf(w, "crew:\t%s\n", strings.Join(head(m.Crew, 3), ", "))
		}
		if len(m.Keywords) > 0 {
			fmt.Fprintf(w, "keywords:\t%s\n", m.Keywords)
		}
		overview := m.Overview
		if overview == "" {
			overview = "No overview available"
		}
		fmt.Fprintf(w, "overview:\t%s\n", overview)
		if a.session.Snapshot().IsAuthenticated() {
			fmt.Fprintf(w, "favorite:\t%t\n", fav)
		}
	})
}

func head[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func cmdHome(ctx context.Context, a *app, _ []string) error {
	feed, err := a.client.Home(ctx)
	if err != nil {
		return err
	}
	return a.out.movies(feed.Recommendations)
}

func cmdRecs(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	movies, err := a.client.Recommendations(ctx, favorites.ID(args[0]))
	if err != nil {
		return err
	}
	return a.out.movies(movies)
}

func cmdRate(ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	score, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return errors.Join(errUsage, err)
	}
	if _, err := a.requireUser(); err != nil {
		return err
	}
	r, err := a.client.AddRating(ctx, favorites.ID(args[0]), score)
	if err != nil {
		return err
	}
	return a.out.result(r, func(w io.Writer) {
		fmt.Fprintf(w, "rated %s: %g\n", r.MovieID, r.Rating)
	})
}

func cmdRatings(ctx context.Context, a *app, args []string) error {
	var movieID string
	fs := subFlags("ratings")
	fs.StringVar(&movieID, "movie", "", "list ratings of this movie instead of yours")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	var (
		ratings []apiclient.Rating
		err     error
	)
	if movieID != "" {
		ratings, err = a.client.RatingsByMovie(ctx, favorites.ID(movieID))
	} else {
		if _, err := a.requireUser(); err != nil {
			return err
		}
		ratings, err = a.client.MyRatings(ctx)
	}
	if err != nil {
		return err
	}
	return a.out.result(ratings, func(w io.Writer) {
		if len(ratings) == 0 {
			fmt.Fprintln(w, "no ratings")
			return
		}
		fmt.Fprintln(w, "MOVIE\tRATING")
		for _, r := range ratings {
			fmt.Fprintf(w, "%s\t%g\n", r.MovieID, r.Rating)
		}
	})
}

type profileView struct {
	User            *session.User     `json:"user"`
	Favorites       []apiclient.Movie `json:"favorites"`
	TopRated        *apiclient.Movie  `json:"top_rated,omitempty"`
	Recommendations []apiclient.Movie `json:"recommendations,omitempty"`
}

// cmdProfile shows favorites plus recommendations seeded by the user's best
// rating. Failures of the recommendation half are logged and skipped.
func cmdProfile(ctx context.Context, a *app, _ []string) error {
	user, err := a.requireUser()
	if err != nil {
		return err
	}
	view := profileView{User: user}

	if view.Favorites, err = a.client.FavoriteMovies(ctx); err != nil {
		return err
	}

	if ratings, err := a.client.MyRatings(ctx); err != nil {
		a.log.WarnContext(ctx, "load ratings for profile", logger.Error(err))
	} else if best, ok := apiclient.BestRated(ratings); ok {
		if m, err := a.client.GetMovie(ctx, best.MovieID); err == nil {
			view.TopRated = &m
			if recs, err := a.client.Recommendations(ctx, best.MovieID); err == nil {
				view.Recommendations = head(recs, 6)
			}
		}
	}

	if a.out.json {
		return a.out.result(view, nil)
	}
	if err := a.out.user(user); err != nil {
		return err
	}
	fmt.Fprintf(a.out.w, "\nFavorites (%d):\n", len(view.Favorites))
	if err := a.out.movies(view.Favorites); err != nil {
		return err
	}
	if view.TopRated != nil {
		fmt.Fprintf(a.out.w, "\nBecause you rated %s highly:\n", view.TopRated.Title)
		return a.out.movies(view.Recommendations)
	}
	return nil
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	var req apiclient.RegisterRequest
	var password string
	fs := subFlags("register")
	fs.StringVar(&req.Username, "username", "", "account name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.FullName, "full-name", "", "display name")
	fs.StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}
	if req.Username == "" || req.Email == "" {
		return errUsage
	}

	var err error
	if req.Password, err = readSecret(a, password); err != nil {
		return err
	}
	user, err := a.client.Register(ctx, req)
	if err != nil {
		return err
	}
	return a.out.result(user, func(w io.Writer) {
		fmt.Fprintf(w, "registered %s, sign in with: moviectl login -u %s\n", user.Username, user.Username)
	})
}

func cmdAdmin(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	user, err := a.requireUser()
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return errAdminOnly
	}

	switch args[0] {
	case "users":
		users, err := a.client.ListUsers(ctx)
		if err != nil {
			return err
		}
		return a.out.result(users, func(w io.Writer) {
			fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tADMIN")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.IsAdmin)
			}
		})
	case "promote", "demote":
		if len(args) != 2 {
			return errUsage
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return errors.Join(errUsage, err)
		}
		var ack apiclient.Ack
		if args[0] == "promote" {
			ack, err = a.client.PromoteUser(ctx, id)
		} else {
			ack, err = a.client.DemoteUser(ctx, id)
		}
		if err != nil {
			return err
		}
		return a.out.result(ack, func(w io.Writer) {
			msg := ack.Message
			if msg == "" {
				msg = args[0] + "d user " + args[1]
			}
			fmt.Fprintln(w, msg)
		})
	default:
		return errUsage
	}
}

// cmdWatch prints every published snapshot until ctx ends.
func cmdWatch(ctx context.Context, a *app, _ []string) error {
	sub := a.session.Subscribe(ctx)
	defer sub.Close()

	for st := range sub.C() {
		line := struct {
			Phase     string         `json:"phase"`
			User      string         `json:"user,omitempty"`
			Favorites []favorites.ID `json:"favorites"`
		}{Phase: st.Phase().String(), Favorites: st.Favorites.Sorted()}
		if st.User != nil {
			line.User = st.User.Username
		}
		err := a.out.result(line, func(w io.Writer) {
			fmt.Fprintf(w, "%s\t%s\t%d favorites\n", line.Phase, line.User, len(line.Favorites))
		})
		if err != nil {
			return err
		}
	}
	return nil
}

type doctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail"`
	Latency string `json:"latency,omitempty"`
}

// cmdDoctor probes the API and, for the redis backend, the Redis server.
func cmdDoctor(ctx context.Context, a *app, _ []string) error {
	checks := []doctorCheck{{Name: "environment", OK: true, Detail: environment.FromContext(ctx).String()}}

	start := time.Now()
	_, err := a.client.Home(ctx)
	api := doctorCheck{Name: "api", OK: err == nil, Detail: a.client.BaseURL(), Latency: time.Since(start).Round(time.Millisecond).String()}
	if err != nil {
		api.Detail += ": " + message(err)
	}
	checks = append(checks, api)

	store := doctorCheck{Name: "credential", Detail: a.cfg.Credential.Backend}
	_, err = a.store.Get(ctx)
	store.OK = err == nil || errors.Is(err, credential.ErrNoCredential)
	if fs, ok := a.store.(*credential.FileStore); ok {
		store.Detail += " " + fs.Path()
	}
	if err != nil && !store.OK {
		store.Detail += ": " + err.Error()
	}
	checks = append(checks, store)

	if a.cfg.Credential.Backend == credential.BackendRedis {
		checks = append(checks, redisCheck(ctx, a.cfg.Credential.Redis))
	}

	failed := 0
	for _, c := range checks {
		if !c.OK {
			failed++
		}
	}
	if err := a.out.result(checks, func(w io.Writer) {
		for _, c := range checks {
			status := "ok"
			if !c.OK {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, status, c.Latency, c.Detail)
		}
	}); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d checks failed", failed)
	}
	return nil
}

func redisCheck(ctx context.Context, cfg redis.Config) doctorCheck {
	check := doctorCheck{Name: "redis", Detail: cfg.URL}
	client, err := redis.Connect(ctx, cfg)
	if err != nil {
		check.Detail += ": " + err.Error()
		return check
	}
	defer client.Close()

	latency, err := redis.Healthcheck(ctx, client)
	if err != nil {
		check.Detail += ": " + err.Error()
		return check
	}
	check.OK = true
	check.Latency = latency.Round(time.Microsecond).String()
	return check
}
