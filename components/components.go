package components

import (
	"embed"
	"os"

	"github.com/prior-it/hermes/server"
)

// Endpoint is where [ServeStaticFiles] is usually mounted, the pages of the framework link to it.
const Endpoint = "/hermes"

//go:embed static/*
var EmbedStatic embed.FS

// Serve the Hermes static files using the specified server at the specified endpoint.
// Pages should import the following file in the HTML header:
//
//	<link href="/<endpoint>/hermes.css" rel="stylesheet"/>
//
// When working on a local version of Hermes, you can set the HERMES_STATIC_FILES environment
// variable to hot reload library styles in debug mode.
func ServeStaticFiles[state server.State](server *server.Server[state], endpoint string) {
	server.StaticFiles(
		endpoint,
		os.Getenv("HERMES_STATIC_FILES"),
		EmbedStatic,
	)
}
