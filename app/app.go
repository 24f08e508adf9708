// Package app is the entry point of a Hermes application.
//
// An [App] collects routes, pages, a controller and a chat room, and then serves them:
//
//	application := app.New(cfg)
//	_ = application.AddRoute("login", core.MethodGet)
//	_ = application.AddHTMLPage(page.LoginPage(), "Login")
//	if err := application.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
//
// Routes are paired with pages in the order in which both were added: the first route serves the first page,
// the second route the second page and so on. Routes on the endpoint of the controller are served by the
// controller instead and do not use a page.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
)

// App holds everything an application serves.
// Registration is not safe for concurrent use and has to happen before the application is served.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *page.Store

	routes *registry[string, Route]
	pages  *registry[string, Page]

	controller Controller
	room       *chat.Room
	transport  *chat.Transport

	title      string
	customPage string
	response   string

	pageCounter atomic.Int64
}

// New creates an application with the specified configuration, or the default configuration if cfg is nil.
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{
		cfg:    cfg,
		logger: slog.Default(),
		store:  page.NewStore(cfg.Page.Template),
		routes: newRegistry[string, Route](),
		pages:  newRegistry[string, Page](),
	}
}

func (a *App) Config() *config.Config {
	return a.cfg
}

// TemplateStore returns the store that the pages of the application are built from.
func (a *App) TemplateStore() *page.Store {
	return a.store
}

// NewBuilder returns a page builder for the template and input types of this application.
func (a *App) NewBuilder(opts ...page.Option) *page.Builder {
	defaults := []page.Option{page.WithStore(a.store), page.WithLogger(a.logger)}
	if a.cfg.Page.LegacyInputTypes {
		defaults = append(defaults, page.WithLegacyInputTypes())
	}
	return page.NewBuilder(append(defaults, opts...)...)
}

// AddRoute registers an endpoint with the method it is served on.
// Adding an endpoint that already exists replaces its method, "login" and "/login" are the same endpoint.
func (a *App) AddRoute(endpoint string, method core.HTTPMethod) error {
	if len(endpoint) == 0 || len(method) == 0 {
		return fmt.Errorf("%w: endpoint and method are required", core.ErrInvalidArgument)
	}
	if !method.Supported() {
		return fmt.Errorf("%w: %w: %s", core.ErrInvalidArgument, core.ErrHTTPMethod, method)
	}
	a.routes.put(absolutePath(endpoint), Route{Endpoint: endpoint, Method: method})
	return nil
}

// AddHTMLPage registers a complete document. The page is identified by the title inside the document,
// the specified title is only used if the document does not have one.
func (a *App) AddHTMLPage(document io.Reader, title string) error {
	if document == nil {
		return fmt.Errorf("%w: document cannot be nil", core.ErrInvalidArgument)
	}
	body, err := io.ReadAll(document)
	if err != nil {
		return fmt.Errorf("cannot read html page: %w", err)
	}
	key, err := page.TitleString(string(body))
	switch {
	case errors.Is(err, core.ErrNoTitle):
		key = title
	case err != nil:
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	if len(key) == 0 {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, core.ErrNoTitle)
	}
	a.putPage(RenderedPage{Title: key, DisplayTitle: title, Body: body})
	return nil
}

// AddCustomHTMLPage registers a page that was built by the application, it needs a title.
func (a *App) AddCustomHTMLPage(html string) error {
	title, err := page.TitleString(html)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}
	a.customPage = html
	a.putPage(CustomPage{Title: title, HTML: html})
	return nil
}

// AddResponseToPage registers a plain text response.
func (a *App) AddResponseToPage(text string) error {
	if len(text) == 0 {
		return fmt.Errorf("%w: response cannot be empty", core.ErrInvalidArgument)
	}
	a.response = text
	a.putPage(PlainResponse{Text: text})
	return nil
}

func (a *App) putPage(p Page) {
	if a.pages.put(p.Key(), p) {
		a.logger.Warn("Page replaces an earlier page with the same key", "page", p.Key())
	}
}

func (a *App) AddController(controller Controller) error {
	if controller == nil {
		return fmt.Errorf("%w: controller cannot be nil", core.ErrInvalidArgument)
	}
	if len(controller.Endpoint()) == 0 {
		return fmt.Errorf("%w: controller needs an endpoint", core.ErrInvalidArgument)
	}
	a.controller = controller
	return nil
}

// AddChatRoom serves the room on the chat endpoints of the configuration.
// The room needs a method; the application is left unchanged if it does not have one.
func (a *App) AddChatRoom(room *chat.Room) error {
	if room == nil {
		return fmt.Errorf("%w: chat room cannot be nil", core.ErrInvalidArgument)
	}
	if !room.HasMethod() {
		return core.ErrChatMethodMissing
	}
	transport, err := chat.NewTransport(room, a.cfg.Chat)
	if err != nil {
		return fmt.Errorf("cannot serve chat room: %w", err)
	}
	a.room = room
	a.transport = transport
	return nil
}

// SetApplicationTitle adds an index page at "/" with this title that lists every route.
func (a *App) SetApplicationTitle(title string) {
	a.title = title
}

func (a *App) ApplicationTitle() string {
	return a.title
}

// Routes returns every route in the order in which it was first added.
func (a *App) Routes() []Route {
	return a.routes.list()
}

func (a *App) Route(endpoint string) (Route, bool) {
	return a.routes.get(absolutePath(endpoint))
}

// Pages returns every page in the order in which it was first added.
func (a *App) Pages() []Page {
	return a.pages.list()
}

func (a *App) Page(key string) (Page, bool) {
	return a.pages.get(key)
}

func (a *App) Controller() Controller {
	return a.controller
}

func (a *App) ChatRoom() *chat.Room {
	return a.room
}

// CustomPage returns the html of the last custom page that was added.
func (a *App) CustomPage() string {
	return a.customPage
}

// Response returns the last plain response that was added.
func (a *App) Response() string {
	return a.response
}

// PageCounter returns the number of pages and responses that were served.
func (a *App) PageCounter() int64 {
	return a.pageCounter.Load()
}

// Close releases the resources of the application, it is called by the server when it shuts down.
func (a *App) Close(_ context.Context) {
	if a.room == nil {
		return
	}
	timeout := time.Duration(a.cfg.App.ShutdownTimeout) * time.Second
	if err := a.room.Shutdown(timeout); err != nil {
		a.logger.Warn("Chat room did not shut down cleanly", "error", err)
	}
}

// Handler returns the handler that serves the application without listening on a port.
func (a *App) Handler() (http.Handler, error) {
	return a.server()
}

// Run serves the application on the configured port until ctx is cancelled or the server fails.
// The chat room, if any, runs in the background for as long as the server does.
func (a *App) Run(ctx context.Context) error {
	srv, err := a.server()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.room != nil {
		go func() {
			if err := a.room.Run(ctx); err != nil {
				a.logger.Error("Chat room stopped", "error", err)
			}
		}()
	}
	if a.cfg.Page.Watch {
		go func() {
			debounce := time.Duration(a.cfg.Page.Debounce) * time.Millisecond
			if err := a.store.Watch(ctx, debounce); err != nil {
				a.logger.Error("Could not watch page template", "error", err)
			}
		}()
	}
	return srv.Start(ctx, nil)
}
