package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httplog/v2"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
)

// RequireUserName is middleware that requires the visitor to have chosen a user name before continuing on.
func RequireUserName[state any](apollo *Apollo, _ state) (context.Context, error) {
	if _, ok := apollo.UserName(); !ok {
		return nil, core.ErrUnauthenticated
	}
	return apollo.Context(), nil
}

// Debug is middleware that can be inserted anywhere and will print some useful debug information about the current
// request.
func Debug(logger *slog.Logger, printFullRequest bool) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if printFullRequest {
				logger.Debug("Debug middleware", "request", r)
			} else {
				logger.Debug("Debug middleware", "method", r.Method, "path", r.URL.Path)
			}

			h.ServeHTTP(w, r)
		})
	}
}

// HTTPLogger is middleware that will log HTTP requests, including context that might be added by the handler itself
// by calling apollo.LogField.
func HTTPLogger(cfg *config.Config) func(http.Handler) http.Handler {
	sourceFieldName := ""
	if cfg.Log.Verbose || cfg.App.Debug {
		sourceFieldName = "source"
	}
	logger := httplog.NewLogger(cfg.App.Name, httplog.Options{
		LogLevel: cfg.Log.Level.ToSlog(),
		JSON:     cfg.Log.Format == config.LogFormatJSON,
		Concise:  !cfg.Log.Verbose,
		Tags: map[string]string{
			"version": cfg.App.Version,
			"env":     string(cfg.App.Env),
		},
		RequestHeaders:  cfg.Log.Verbose,
		ResponseHeaders: cfg.Log.Verbose,
		QuietDownRoutes: []string{
			"/favicon.ico",
			"/hermes",
			cfg.Chat.WSEndpoint,
		},
		QuietDownPeriod: 10 * time.Second, //nolint:mnd
		SourceFieldName: sourceFieldName,
	})
	return httplog.RequestLogger(logger)
}
