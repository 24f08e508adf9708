package main

import (
	"fmt"
	"net/http"

	"github.com/fatih/color"
	"github.com/prior-it/hermes/server"
	"github.com/spf13/cobra"
)

type staticOptions struct {
	port     uint32
	endpoint string
	dir      string
	welcome  string
}

func newStaticCmd() *cobra.Command {
	var opts staticOptions
	cmd := &cobra.Command{
		Use:   "static",
		Short: "Serve a directory of static files",
		Long: `Serve a directory of static files below an endpoint prefix, with a health check on <endpoint>/health.

Examples:
  hermes static --dir ./public
  hermes static --dir ./site --endpoint /docs --welcome home.html --port 9000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := staticServer(opts)
			if err != nil {
				return err
			}
			_, _ = color.New(color.FgCyan, color.Bold).Fprintf(
				cmd.OutOrStdout(),
				"Serving %s on http://localhost:%d%s\n", opts.dir, srv.Port(), opts.endpoint,
			)
			return srv.Start(cmd.Context())
		},
	}
	cmd.Flags().Uint32VarP(&opts.port, "port", "p", 8080, "port to listen on") //nolint:mnd
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "/", "path prefix of the site")
	cmd.Flags().StringVarP(&opts.dir, "dir", "d", ".", "directory to serve")
	cmd.Flags().StringVarP(&opts.welcome, "welcome", "w", "index.html", "file that is served on the endpoint itself")
	return cmd
}

func staticServer(opts staticOptions) (*server.Configured, error) {
	health := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprint(w, "ok")
	})
	return server.Configure().
		Port(opts.port).
		Endpoint(opts.endpoint).
		Controller(health, "/health").
		StaticResources(opts.welcome, opts.dir).
		Build()
}
