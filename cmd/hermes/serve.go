package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/prior-it/hermes/app"
	"github.com/prior-it/hermes/chat"
	"github.com/prior-it/hermes/config"
	"github.com/prior-it/hermes/core"
	"github.com/prior-it/hermes/page"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	title     string
	chat      string
	timestamp bool
	port      uint32
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the demo application",
		Long: `Serve the demo application until interrupted.

The demo serves a login page on /login, a contact page on /contact, a generated page on /about,
a plain response on /ping and a login controller on /account.

Examples:
  hermes serve                          # Serve on the configured port
  hermes serve -p 9000 --title Demo     # Serve on port 9000 with an index page
  hermes serve --chat private           # Add a private chat room on /chat`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if opts.port > 0 {
				cfg.App.Port = opts.port
			}
			application, err := newDemo(cfg, opts)
			if err != nil {
				return err
			}
			banner(cmd.OutOrStdout(), cfg, application)
			return application.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "application title, adds an index page on /")
	cmd.Flags().StringVar(&opts.chat, "chat", "", "add a chat room with the specified method (private, group)")
	cmd.Flags().BoolVar(&opts.timestamp, "timestamp", false, "show the time of every chat message")
	cmd.Flags().Uint32VarP(&opts.port, "port", "p", 0, "port to listen on, overrides APP_PORT")
	return cmd
}

// newDemo registers the demo routes, pages and controller.
func newDemo(cfg *config.Config, opts serveOptions) (*app.App, error) {
	application := app.New(cfg)
	if len(opts.title) > 0 {
		application.SetApplicationTitle(opts.title)
	}

	about := application.NewBuilder(page.WithTitle("About")).
		AddHeader("About").
		AddNavElements("Home", "About", "Contact").
		AddMainSection("Hermes", "This page was generated by the page builder.").
		AddFooterSection("Main Street 1", "+32 123 45 67", "hello@example.com").
		Build()
	pong := "pong"

	// Routes are served by the pages in the order in which both are added
	steps := []error{
		application.AddRoute("login", core.MethodGet),
		application.AddRoute("contact", core.MethodGet),
		application.AddRoute("about", core.MethodGet),
		application.AddRoute("ping", core.MethodGet),
		application.AddRoute("account", core.MethodGet),
		application.AddHTMLPage(page.LoginPage(), "Login"),
		application.AddHTMLPage(page.ContactPage(), "Contact"),
		application.AddCustomHTMLPage(about),
		application.AddResponseToPage(pong),
		application.AddController(newAccountController(application)),
	}
	for _, err := range steps {
		if err != nil {
			return nil, fmt.Errorf("cannot create demo application: %w", err)
		}
	}

	if len(opts.chat) > 0 {
		method, err := chat.ParseMethod(opts.chat)
		if err != nil {
			return nil, err
		}
		room, err := chat.NewRoom(chat.WithMethod(method), chat.WithTimestamp(opts.timestamp))
		if err != nil {
			return nil, err
		}
		if err := application.AddChatRoom(room); err != nil {
			return nil, err
		}
	}
	return application, nil
}

func banner(w io.Writer, cfg *config.Config, application *app.App) {
	title := color.New(color.FgCyan, color.Bold)
	route := color.New(color.FgGreen)
	_, _ = title.Fprintf(w, "Hermes is listening on %s\n", cfg.BaseURL())
	for _, r := range application.Routes() {
		_, _ = route.Fprintf(w, "  %-4s %s\n", r.Method, r.Path())
	}
	if application.ChatRoom() != nil {
		_, _ = route.Fprintf(w, "  chat %s (%s)\n", cfg.Chat.Path, application.ChatRoom().Method())
	}
}
