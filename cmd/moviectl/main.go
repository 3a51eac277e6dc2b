// moviectl is a command-line client for the movie recommendation API.
//
// It keeps the signed-in session in a credential store (a YAML file in the
// user config directory by default), so a login survives across runs:
//
//	moviectl login -u alice
//	moviectl toggle 238
//	moviectl favorites
//	moviectl logout
//
// Configuration comes from the environment (and a .env file when present):
// API_BASE_URL, API_TIMEOUT, CREDENTIAL_BACKEND, LOG_LEVEL and friends.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/dmitrymomot/moviekit/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %s\n", message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}
	return execute(ctx, cfg, args, stdin, stdout, stderr)
}
