package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prior-it/hermes/components"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/server"
)

// BootstrappedState is a state that is initialised through bootstrapping.
//
// Init is called after all middleware has been attached, so it can register routes on the server.
type BootstrappedState[state server.State] interface {
	server.State
	Init(server *server.Server[state], cfg *config.Config) error
}

// Full creates a new server and initializes all default systems.
// The Full bootstrapper is meant for applications that register their own routes through [BootstrappedState.Init].
//
// This will initialise the server itself, a logger, most middleware and Sentry (if enabled in config).
//
// You can supply additional middleware if you want to.
//
// Note that this function will add routes before returning, which means it is not possible to add additional global middleware after calling this function.
func Full[state BootstrappedState[state]](
	stt state,
	cfg *config.Config,
	middlewares ...func(http.Handler) http.Handler,
) (*server.Server[state], error) {
	if cfg == nil {
		panic("You need to supply a config.Config value to bootstrap a new server")
	}

	logger := createLogger(cfg, os.Stdout)

	s := server.New(stt, cfg).
		WithLogger(logger)

	if cfg.Sentry.Enabled {
		initSentry(logger, cfg)
	}

	s.AttachDefaultMiddleware()

	if cfg.Sentry.Enabled {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
			Timeout:         5 * time.Second, //nolint:mnd
		})
		s.UseStd(sentryHandler.Handle)
	}

	// Fully disable caching in debug mode
	if cfg.App.Debug {
		s.UseStd(middleware.NoCache)
	}

	s.UseStd(middlewares...)

	components.ServeStaticFiles(s, components.Endpoint)

	if err := stt.Init(s, cfg); err != nil {
		return nil, fmt.Errorf("cannot initialise the application: %w", err)
	}
	return s, nil
}

// createLogger builds the logger described by cfg and makes it the default logger.
// Plaintext logs are colored by tint when they are written to a terminal in debug mode.
func createLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var logger *slog.Logger
	level := cfg.Log.Level.ToSlog()
	addSource := cfg.Log.Verbose && cfg.App.Debug
	switch cfg.Log.Format {
	case config.LogFormatPlaintext:
		logger = slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  addSource,
			TimeFormat: time.TimeOnly,
			NoColor:    !cfg.App.Debug || w != os.Stdout,
		}))
	default:
		logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: addSource,
		}))
	}
	slog.SetDefault(logger)
	return logger
}

func initSentry(logger *slog.Logger, cfg *config.Config) {
	logger.Debug("Trying to initialise Sentry")
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Debug:            cfg.App.Debug,
		AttachStacktrace: true,
		SampleRate:       cfg.Sentry.SampleRate,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.TracesRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			// Websocket connections stay open for the lifetime of a chat session
			if ctx.Span.Name == "GET "+cfg.Chat.WSEndpoint {
				return 0.0
			}
			return 1.0
		}),
		ServerName:  cfg.App.Name,
		Release:     cfg.App.Version,
		Environment: string(cfg.App.Env),
	}); err != nil {
		logger.Error("Sentry initialization failed", "error", err)
	} else {
		logger.Debug("Sentry initialised")
	}
}
