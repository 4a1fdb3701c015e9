package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/ppigraph/internal/server"
	"github.com/matsen/ppigraph/internal/session"
	"github.com/matsen/ppigraph/internal/viz"
)

var (
	serveAddr   string
	serveLayout string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: config addr)")
	serveCmd.Flags().StringVar(&serveLayout, "layout", "", "Layout: preset, force, circle, or grid (default: config layout)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive viewer",
	Long: `Serve the three-panel viewer and its JSON API.

The page shows the literature panel, the graph and the controls panel.
Browsers receive graph changes and notifications over a websocket.

Examples:
  ppi serve
  ppi serve --addr 0.0.0.0:9000 --layout force`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	addr := cfg.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	layout := cfg.Layout
	if serveLayout != "" {
		layout = serveLayout
	}
	if err := viz.ValidateLayout(layout); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cfg.LogLevel)
	sess, err := session.New(sessionOptions(cfg, logger)...)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer sess.Close()

	srv := server.New(sess,
		server.WithLogger(logger),
		server.WithLayout(layout),
		server.WithMaxUploadBytes(cfg.MaxUploadBytes),
		server.WithBaseContext(ctx),
	)
	return srv.ListenAndServe(ctx, addr)
}
