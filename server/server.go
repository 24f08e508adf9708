package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/gorilla/sessions"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/vearutop/statigz"
)

type (
	ErrorHandler    func(apollo *Apollo, err error)
	NotFoundHandler func(apollo *Apollo)
)

type State interface {
	Close(ctx context.Context)
}

type Server[state State] struct {
	mux          *chi.Mux
	state        state
	logger       *slog.Logger
	errorHandler ErrorHandler
	sessionStore sessions.Store
	cfg          *config.Config
}

type (
	Handler[state any]    func(apollo *Apollo, state state) error
	Middleware[state any] func(apollo *Apollo, state state) (context.Context, error)
)

// Stateless converts a handler that does not need the application state into a [Handler].
func Stateless[state any](handler func(apollo *Apollo) error) Handler[state] {
	return func(apollo *Apollo, _ state) error {
		return handler(apollo)
	}
}

// New creates a new server with the specified state object and configuration.
// A cookie session store is created if both the authentication and encryption keys are configured.
func New[state State](s state, cfg *config.Config) *Server[state] {
	server := &Server[state]{
		mux:          chi.NewMux(),
		state:        s,
		logger:       slog.Default(),
		errorHandler: DefaultErrorHandler,
		cfg:          cfg,
	}

	if len(cfg.App.AuthenticationKey) > 0 && len(cfg.App.EncryptionKey) > 0 {
		server.sessionStore = sessions.NewCookieStore(
			[]byte(cfg.App.AuthenticationKey),
			[]byte(cfg.App.EncryptionKey),
		)
	}

	// Attach default not found handler
	server.WithNotFoundHandler(
		func(apollo *Apollo) {
			apollo.Writer.WriteHeader(http.StatusNotFound)
			render.PlainText(
				apollo.Writer,
				apollo.Request,
				fmt.Sprintf("Page %q not found", apollo.Path()),
			)
		},
	)

	return server
}

func (server *Server[state]) WithNotFoundHandler(notFoundHandler NotFoundHandler) *Server[state] {
	server.mux.NotFound(server.handle(func(apollo *Apollo, _ state) error {
		notFoundHandler(apollo)
		return nil
	}))
	return server
}

func (server *Server[state]) WithLogger(logger *slog.Logger) *Server[state] {
	server.logger = logger
	return server
}

func (server *Server[state]) WithSessionStore(store sessions.Store) *Server[state] {
	server.sessionStore = store
	return server
}

func (server *Server[state]) Logger() *slog.Logger {
	return server.logger
}

func (server *Server[state]) SessionStore() sessions.Store {
	return server.sessionStore
}

func (server *Server[state]) Config() *config.Config {
	return server.cfg
}

func (server *Server[state]) NewApollo(w http.ResponseWriter, r *http.Request) *Apollo {
	return &Apollo{
		Writer:  w,
		Request: r,
		Cfg:     server.cfg,
		logger:  server.logger,
		store:   server.sessionStore,
	}
}

func (server *Server[state]) handle(handler Handler[state]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apollo := server.NewApollo(w, r)
		err := handler(apollo, server.state)
		if err != nil {
			server.errorHandler(apollo, err)
		}
		_ = r.Body.Close()
	}
}

// Utility function that converts Hermes middleware to a http handler
func (server *Server[state]) HandlerMiddleware(
	middleware Middleware[state],
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apollo := server.NewApollo(w, r)
			ctx, err := middleware(apollo, server.state)
			if err != nil {
				server.errorHandler(apollo, err)
			} else {
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// AttachDefaultMiddleware adds panic recovery, request ids, timeouts and the request context.
// HTTP requests are only logged if request logging is turned on in the configuration.
// In debug mode every request is also logged at debug level by [Debug].
func (server *Server[state]) AttachDefaultMiddleware() {
	server.UseStd(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.RequestID,
	)
	if server.cfg.Log.Requests {
		server.UseStd(HTTPLogger(server.cfg))
	}
	if server.cfg.App.Debug {
		server.UseStd(Debug(server.logger, server.cfg.Log.Verbose))
	}
	if server.cfg.App.RequestTimeout > 0 {
		server.UseStd(middleware.Timeout(
			time.Duration(server.cfg.App.RequestTimeout) * time.Second,
		))
	}
	server.UseStd(server.ContextMiddleware)
}

func (server *Server[state]) newHTTPServer() *http.Server {
	return &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,  //nolint:mnd
		ReadTimeout:       15 * time.Second, //nolint:mnd
		WriteTimeout:      15 * time.Second, //nolint:mnd
		IdleTimeout:       60 * time.Second, //nolint:mnd
		ErrorLog:          slog.NewLogLogger(server.logger.Handler(), slog.LevelWarn),
	}
}

// Start runs the server until ctx is cancelled, SIGINT or SIGTERM is received, or the server fails.
// If no listener is provided, a new TCP listener will be created on the configured host and port.
// Errors that prevent the server from running are returned as fatal errors, a clean shutdown returns nil.
func (server *Server[state]) Start(ctx context.Context, listener net.Listener) error {
	// Handle OS signals to cancel the context
	ctxServer, stopSignal := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignal()

	if listener == nil {
		host := fmt.Sprintf("%v:%v", server.cfg.App.Host, server.cfg.App.Port)
		l, err := net.Listen("tcp", host)
		if err != nil {
			return core.Fatal("start", fmt.Errorf("cannot listen on %s: %w", host, err))
		}
		listener = l
	}

	httpServer := server.newHTTPServer()
	errorCh := make(chan error, 1)
	// Run the actual server
	go func() {
		server.logger.Info("Starting server", "url", server.cfg.BaseURL(), "host", listener.Addr().String())
		err := httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorCh <- err
		}
		close(errorCh)
	}()

	var errServer error
	select {
	case err := <-errorCh:
		errServer = err
	case <-ctxServer.Done():
		server.logger.Info("Server interrupt received")
	}

	ctxShutdown, cancelShutdown := context.WithTimeout(
		context.WithoutCancel(ctx),
		time.Duration(server.cfg.App.ShutdownTimeout)*time.Second,
	)
	defer cancelShutdown()

	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		server.logger.Warn("Server did not shut down cleanly", "error", err)
	}
	server.Shutdown(ctxShutdown)

	return core.Fatal("serve", errServer)
}

// Shutdown will gracefully release all server resources. You generally don't need to call this manually.
func (server *Server[state]) Shutdown(ctx context.Context) {
	sentryTimeout := max(0, time.Duration(server.cfg.App.ShutdownTimeout-1))
	sentry.Flush(sentryTimeout * time.Second)
	server.state.Close(ctx)
}

// ServeHTTP implements [net/http.Handler].
func (server *Server[state]) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	server.mux.ServeHTTP(writer, request)
}

// UseStd appends a stdlib middleware handler to the middleware stack.
//
// The middleware stack for any server will execute before searching for a matching
// route to a specific handler, which provides opportunity to respond early,
// change the course of the request execution, or set request-scoped values for
// the next Handler.
func (server *Server[state]) UseStd(middlewares ...func(http.Handler) http.Handler) *Server[state] {
	server.mux.Use(middlewares...)
	return server
}

// With returns a server that runs the specified middleware only for the routes that are added to it.
func (server *Server[state]) With(
	middlewares ...Middleware[state],
) *Server[state] {
	srv := Server[state](*server) //nolint:unconvert // shallow copy
	inline := make([]func(http.Handler) http.Handler, 0, len(middlewares))
	for _, mi := range middlewares {
		inline = append(inline, server.HandlerMiddleware(mi))
	}
	srv.mux = server.mux.With(inline...).(*chi.Mux)
	return &srv
}

// Handle adds the route `pattern` that matches any http method to
// execute the `handler` [net/http.Handler].
func (server *Server[state]) Handle(pattern string, handler http.Handler) *Server[state] {
	server.mux.Handle(pattern, handler)
	return server
}

// StaticFiles serves all files in the `dir` directory or the `fs` FileSystem at the `pattern` url.
// In debug mode, assets will be loaded from disk to support hot-reloading.
// In production mode, assets will be gzipped and embedded in the executable instead.
// Debug mode hot-reloading will be disabled if dir is set to the empty string.
// Filesystems will ignore `/static` folders and instead directly target the files inside. So if your
// filesystem has a file "/static/file.txt", you can get it directly with "/file.txt".
//
// Example:
//
//	server.StaticFiles("/assets/", "./static/", assetsFS)
func (server *Server[state]) StaticFiles(pattern string, dir string, files fs.ReadDirFS) {
	server.Handle(pattern+"*", http.StripPrefix(pattern, staticHandler(server.cfg.App.Debug, dir, files)))
}

func staticHandler(debug bool, dir string, files fs.ReadDirFS) http.Handler {
	if debug && len(dir) > 0 {
		return http.FileServer(http.Dir(dir))
	}
	return middleware.NoCache(
		statigz.FileServer(files, statigz.EncodeOnInit, statigz.FSPrefix("static")),
	)
}

// Method adds the route `pattern` that matches the specified http method to execute `handlerFn`.
func (server *Server[state]) Method(
	method core.HTTPMethod,
	pattern string,
	handlerFn func(apollo *Apollo, state state) error,
) *Server[state] {
	server.mux.Method(method.String(), pattern, server.handle(handlerFn))
	return server
}

// Get adds the route `pattern` that matches a GET http method to execute the `handlerFn` HandlerFunc.
func (server *Server[state]) Get(
	pattern string,
	handlerFn func(apollo *Apollo, state state) error,
) *Server[state] {
	server.mux.Get(pattern, server.handle(handlerFn))
	return server
}

// Post adds the route `pattern` that matches a POST http method to execute the `handlerFn` HandlerFunc.
func (server *Server[state]) Post(
	pattern string,
	handlerFn func(apollo *Apollo, state state) error,
) *Server[state] {
	server.mux.Post(pattern, server.handle(handlerFn))
	return server
}

// Put adds the route `pattern` that matches a PUT http method to execute the `handlerFn` HandlerFunc.
func (server *Server[state]) Put(
	pattern string,
	handlerFn func(apollo *Apollo, state state) error,
) *Server[state] {
	server.mux.Put(pattern, server.handle(handlerFn))
	return server
}

