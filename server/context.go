package server

import (
	"context"
	"net/http"

	"github.com/prior-it/hermes/config"
)

type contextKey uint

const (
	ctxConfig contextKey = iota
	ctxUserName
)

// ContextMiddleware adds the configuration and the session user name to the request context.
func (server *Server[state]) ContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ctxConfig, server.cfg)
		if server.sessionStore != nil {
			session, err := server.sessionStore.Get(r, cookieSession)
			if err == nil {
				if name, ok := session.Values[sessionUserName].(string); ok && len(name) > 0 {
					ctx = context.WithValue(ctx, ctxUserName, name)
				}
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Config returns the configuration stored in the context by the ContextMiddleware, or nil.
func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ctxConfig).(*config.Config)
	return cfg
}

func UserName(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(ctxUserName).(string)
	return name, ok
}
