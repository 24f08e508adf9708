package app

import (
	"fmt"

	"github.com/prior-it/hermes/bootstrap"
	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/prior-it/hermes/server"
)

func (a *App) server() (*server.Server[*App], error) {
	srv, err := bootstrap.Full(a, a.cfg)
	if err != nil {
		return nil, core.Fatal("init", err)
	}
	return srv, nil
}

// Init adds the routes of the application to the server, see [bootstrap.Full].
func (a *App) Init(srv *server.Server[*App], _ *config.Config) error {
	a.logger = srv.Logger()
	controllerPath := ""
	if a.controller != nil {
		controllerPath = absolutePath(a.controller.Endpoint())
		srv.Get(controllerPath, server.Stateless[*App](a.controller.HandleGet)).
			Post(controllerPath, server.Stateless[*App](a.controller.HandlePost)).
			Put(controllerPath, server.Stateless[*App](a.controller.HandlePut))
	}

	if len(a.title) > 0 && !a.servesRoot(controllerPath) {
		index, err := a.indexPage()
		if err != nil {
			return err
		}
		srv.Get("/", a.servePage(index))
	}

	pages := a.pages.list()
	next := 0
	for _, route := range a.routes.all() {
		if route.Path() == controllerPath {
			continue
		}
		if next >= len(pages) {
			return fmt.Errorf("route %q: %w", route.Endpoint, core.ErrNoContent)
		}
		srv.Method(route.Method, route.Path(), a.servePage(pages[next]))
		next++
	}
	for _, unused := range pages[next:] {
		a.logger.Warn("Page is not served on any route", "page", unused.Key())
	}

	if a.transport != nil {
		chat.Register(srv, a.transport)
	}
	return nil
}

func (a *App) servesRoot(controllerPath string) bool {
	if controllerPath == "/" {
		return true
	}
	for _, route := range a.routes.all() {
		if route.Path() == "/" {
			return true
		}
	}
	return false
}

// indexPage lists every route of the application.
func (a *App) indexPage() (Page, error) {
	paths := make([]string, 0, a.routes.len())
	for _, route := range a.routes.all() {
		paths = append(paths, route.Path())
	}
	builder := a.NewBuilder(page.WithTitle(a.title)).
		AddHeader(a.title).
		AddNavElements(paths...).
		AddMainSection(a.title, fmt.Sprintf("This application serves %d routes.", len(paths)))
	if err := builder.Err(); err != nil {
		return nil, fmt.Errorf("cannot build index page: %w", err)
	}
	return CustomPage{Title: a.title, HTML: builder.Build()}, nil
}

func (a *App) servePage(p Page) server.Handler[*App] {
	return func(apollo *server.Apollo, _ *App) error {
		a.pageCounter.Add(1)
		return p.render(apollo)
	}
}
