/*
Package server provides the HTTP server that hermes applications run on.
Handlers take an application-specific state object (used for dependency injection)
and an [Apollo] object which wraps the request and contains a lot of utility functions.

Basic example:

	import (
		"context"
		"log"

		"github.com/prior-it/hermes/config"
		"github.com/prior-it/hermes/server"
	)

	func main() {
		cfg := config.Default()
		s := server.New(state.New(), cfg)
		s.AttachDefaultMiddleware()

		s.Get("/", Home).
			Post("/login", DoLogin)

		log.Fatal(s.Start(context.Background(), nil))
	}

	func Home(apollo *server.Apollo, _ *state.State) error {
		return apollo.RenderText("Hello")
	}

Applications that only need to serve a single handler and some static resources can use the
[Configure] builder instead.
*/
package server
