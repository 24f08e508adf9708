package main

import (
	"fmt"
	"os"

	"github.com/prior-it/hermes/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configDir string
	root := &cobra.Command{
		Use:   "hermes",
		Short: "A small web framework for pages, controllers and chat rooms",
		Long: `Hermes serves routes, prebuilt or generated HTML pages, controllers and chat rooms
without writing any HTTP boilerplate.

Quick Start:
  hermes serve                       Serve the demo application on port 8080
  hermes serve --chat group          Serve the demo application with a group chat
  hermes render --header Welcome     Print a generated page
  hermes static --dir ./public       Serve a static site

Configuration is read from config.toml in the configuration directory, a .env file
and the environment (APP_PORT, LOG_LEVEL, CHAT_WSENDPOINT, ...).`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "directory that contains config.toml")

	load := func() (*config.Config, error) {
		cfg, err := config.Load(os.DirFS(configDir))
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newRenderCmd(load),
		newStaticCmd(),
	)
	return root
}
