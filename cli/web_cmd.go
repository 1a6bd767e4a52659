package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/medsum/medsum/config"
	"github.com/medsum/medsum/relay"
	"github.com/medsum/medsum/web"
)

// runWeb serves the web form until interrupted. When --watch is set, edits to
// the config file's template take effect without restarting the listener.
func runWeb(g globals, args []string) int {
	fs := flag.NewFlagSet("web", flag.ContinueOnError)

	var (
		listen   string
		watch    bool
		debounce time.Duration
	)

	fs.StringVar(&listen, "listen", "", "listen address (default from config, :8080)")
	fs.BoolVar(&watch, "watch", true, "reload the relay when the config file changes")
	fs.DurationVar(&debounce, "debounce", 250*time.Millisecond, "debounce interval for config changes")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, logger, err := g.setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	if listen == "" {
		listen = cfg.Listen
	}

	key, err := cfg.APIKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	provider, err := cfg.NewProvider(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	r, err := relayFor(provider, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}
	srv := web.New(r, web.WithLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)
	defer stop()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		// Stop the watcher too if the listener fails.
		defer stop()
		return srv.ListenAndServe(egCtx, listen, 10*time.Second)
	})
	if watch {
		eg.Go(func() error {
			return config.Watch(egCtx, cfg.Path(), debounce, logger, func(next *config.Config) {
				nr, err := relayFor(provider, next, logger)
				if err != nil {
					logger.Warn("keeping previous relay", "error", err)
					return
				}
				srv.SetExplainer(nr)
			})
		})
	}

	if err := eg.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: web server failed: %v\n", err)
		return 2
	}
	return 0
}

// relayFor builds a relay over provider with cfg's prompt template. The
// provider, and with it the model, base URL and API key, stays fixed for the
// process lifetime; only the template follows config edits.
func relayFor(provider relay.Provider, cfg *config.Config, logger *slog.Logger) (*relay.Relay, error) {
	tmpl, err := cfg.PromptTemplate()
	if err != nil {
		return nil, err
	}
	return relay.New(provider, relay.WithTemplate(tmpl), relay.WithLogger(logger)), nil
}
