package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prior-it/hermes/core"
	"github.com/vearutop/statigz"
)

// Configurator builds a standalone server step by step.
// Every step validates its input; problems are collected and returned together by [Configurator.Build].
//
// # Example
//
//	srv, err := server.Configure().
//		Port(8080).
//		Endpoint("/app").
//		Controller(handler, "/hello").
//		StaticResources("index.html", "./public").
//		Build()
type Configurator struct {
	port        uint32
	portSet     bool
	endpoint    string
	endpointSet bool
	controllers []mountedHandler
	static      *staticResources
	errs        []error
}

type mountedHandler struct {
	pattern string
	handler http.Handler
}

type staticResources struct {
	welcomeFile string
	files       fs.ReadDirFS
}

// Configured is a server that was built by a [Configurator].
type Configured struct {
	port    uint32
	handler http.Handler
	logger  *slog.Logger
}

func Configure() *Configurator {
	return &Configurator{}
}

func (c *Configurator) fail(err error) *Configurator {
	c.errs = append(c.errs, err)
	return c
}

// Port sets the TCP port the server listens on.
func (c *Configurator) Port(port uint32) *Configurator {
	c.portSet = true
	if port == 0 || port > 65535 {
		return c.fail(fmt.Errorf("%w: invalid port %d", core.ErrInvalidArgument, port))
	}
	c.port = port
	return c
}

// Endpoint sets the path prefix that every controller and static resource is served under.
func (c *Configurator) Endpoint(prefix string) *Configurator {
	c.endpointSet = true
	if !strings.HasPrefix(prefix, "/") {
		return c.fail(fmt.Errorf("%w: endpoint %q must start with a slash", core.ErrInvalidArgument, prefix))
	}
	c.endpoint = strings.TrimSuffix(prefix, "/")
	return c
}

// Controller serves handler at the specified endpoint, relative to the endpoint prefix.
func (c *Configurator) Controller(handler http.Handler, endpoint string) *Configurator {
	switch {
	case handler == nil:
		return c.fail(fmt.Errorf("%w: controller cannot be nil", core.ErrInvalidArgument))
	case len(endpoint) == 0:
		return c.fail(fmt.Errorf("%w: controller needs an endpoint", core.ErrInvalidArgument))
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	c.controllers = append(c.controllers, mountedHandler{pattern: endpoint, handler: handler})
	return c
}

// StaticResources serves the files in dir below the endpoint prefix, with welcomeFile as the index page.
func (c *Configurator) StaticResources(welcomeFile string, dir string) *Configurator {
	info, err := os.Stat(dir)
	if err != nil {
		return c.fail(fmt.Errorf("%w: cannot use static directory: %w", core.ErrInvalidArgument, err))
	}
	if !info.IsDir() {
		return c.fail(fmt.Errorf("%w: %q is not a directory", core.ErrInvalidArgument, dir))
	}
	files, ok := os.DirFS(dir).(fs.ReadDirFS)
	if !ok {
		return c.fail(fmt.Errorf("%w: cannot list %q", core.ErrInvalidArgument, dir))
	}
	if len(welcomeFile) > 0 {
		if _, err := fs.Stat(files, welcomeFile); err != nil {
			return c.fail(fmt.Errorf("%w: welcome file: %w", core.ErrInvalidArgument, err))
		}
	}
	c.static = &staticResources{welcomeFile: welcomeFile, files: files}
	return c
}

// Build validates the configuration and creates the server.
// All configuration problems are returned as a single fatal error.
func (c *Configurator) Build() (*Configured, error) {
	errs := c.errs
	if !c.portSet {
		errs = append(errs, fmt.Errorf("%w: no port configured", core.ErrInvalidArgument))
	}
	if !c.endpointSet {
		errs = append(errs, fmt.Errorf("%w: no endpoint configured", core.ErrInvalidArgument))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, core.Fatal("configure", err)
	}

	mux := chi.NewMux()
	mux.Use(middleware.Recoverer, middleware.RealIP)
	router := chi.Router(mux)
	if len(c.endpoint) > 0 {
		router = chi.NewRouter()
		mux.Mount(c.endpoint, router)
	}
	for _, ctrl := range c.controllers {
		router.Handle(ctrl.pattern, ctrl.handler)
	}
	if c.static != nil {
		assets := statigz.FileServer(c.static.files, statigz.EncodeOnInit)
		router.Handle("/*", http.StripPrefix(c.endpoint, assets))
		if len(c.static.welcomeFile) > 0 {
			welcome := c.static
			router.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.ServeFileFS(w, r, welcome.files, welcome.welcomeFile)
			})
		}
	}

	return &Configured{port: c.port, handler: mux, logger: slog.Default()}, nil
}

func (c *Configured) Handler() http.Handler {
	return c.handler
}

func (c *Configured) Port() uint32 {
	return c.port
}

// Start serves on the configured port until ctx is cancelled.
func (c *Configured) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.port))
	if err != nil {
		return core.Fatal("start", fmt.Errorf("cannot listen on port %d: %w", c.port, err))
	}
	httpServer := &http.Server{
		Handler:           c.handler,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd
		IdleTimeout:       60 * time.Second, //nolint:mnd
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second) //nolint:mnd
		defer cancel()
		if err := httpServer.Shutdown(ctxShutdown); err != nil {
			c.logger.Warn("Server did not shut down cleanly", "error", err)
		}
	}()
	c.logger.Info("Starting server", "host", listener.Addr().String())
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return core.Fatal("serve", err)
	}
	return nil
}
