package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/dmitrymomot/moviekit/pkg/apiclient"
	"github.com/dmitrymomot/moviekit/pkg/credential"
	"github.com/dmitrymomot/moviekit/pkg/environment"
	"github.com/dmitrymomot/moviekit/pkg/favorites"
	"github.com/dmitrymomot/moviekit/pkg/logger"
	"github.com/dmitrymomot/moviekit/pkg/requestid"
	"github.com/dmitrymomot/moviekit/pkg/session"
)

const serviceName = "moviectl"

type appConfig struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"warn"`

	API        apiclient.Config
	Credential credential.Config
}

// app holds everything a command needs. Build it with newApp and release it
// with close.
type app struct {
	cfg     appConfig
	env     environment.Environment
	log     *slog.Logger
	store   credential.Store
	client  *apiclient.Client
	session *session.Manager
	out     *printer
	stdin   io.Reader
}

func newApp(ctx context.Context, cfg appConfig, g globalFlags, stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	if g.apiURL != "" {
		cfg.API.BaseURL = g.apiURL
	}
	if g.backend != "" {
		cfg.Credential.Backend = g.backend
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}

	env := environment.Parse(cfg.Env)
	log := logger.New(
		logger.WithEnvironment(env, serviceName),
		logger.WithLevelName(cfg.LogLevel),
		logger.WithOutput(stderr),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	logger.SetAsDefault(log)

	store, err := credential.New(ctx, cfg.Credential)
	if err != nil {
		return nil, err
	}

	client, err := apiclient.NewFromConfig(cfg.API, store, apiclient.WithLogger(log.With(logger.Component("apiclient"))))
	if err != nil {
		_ = credential.Close(store)
		return nil, err
	}

	mgr := session.New(client.SessionService(), client.FavoritesService(),
		session.WithCredentialStore(store),
		session.WithLogger(log),
		session.WithNotifier(func(_ context.Context, id favorites.ID, msg string) {
			_, _ = io.WriteString(stderr, "could not update favorite "+id.String()+": "+msg+"\n")
		}),
	)

	return &app{
		cfg:     cfg,
		env:     env,
		log:     log,
		store:   store,
		client:  client,
		session: mgr,
		out:     newPrinter(stdout, g.json),
		stdin:   stdin,
	}, nil
}

func (a *app) close() {
	if err := a.session.Close(); err != nil {
		a.log.Warn("close session", logger.Error(err))
	}
	if err := credential.Close(a.store); err != nil {
		a.log.Warn("close credential store", logger.Error(err))
	}
}

// requireUser returns the signed-in user or session.ErrUnauthenticated.
func (a *app) requireUser() (*session.User, error) {
	st := a.session.Snapshot()
	if !st.IsAuthenticated() {
		return nil, session.ErrUnauthenticated
	}
	return st.User, nil
}
