package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskboard/internal/infrastructure/tui"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/watch"
	"github.com/felixgeelhaar/taskboard/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/taskboard/pkg/domain/reorder"
	"github.com/felixgeelhaar/taskboard/pkg/infrastructure/web"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser UI and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		addr := app.Config.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv, err := web.NewServer(addr, app.List, web.Options{
			Publisher:   app.Publisher,
			CORSOrigins: app.Config.Server.CORSOrigins,
			DragFamily:  reorder.Family(app.Config.Drag.Family),
			Logger:      app.Logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		if serveWatch || app.Config.Template.Watch {
			if err := startWatcher(ctx, app); err != nil {
				return err
			}
		}

		app.List.Load(ctx)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving taskboard on http://%s\n", displayAddr(addr))
		return srv.Start(ctx)
	},
}

// startWatcher reconciles the list whenever the template file changes.
func startWatcher(ctx context.Context, app *wiring.App) error {
	path := wiring.TemplatePath(app.Config)
	if path == "" {
		return NewCLIError("nothing to watch", "Set template.path to a local template file to use --watch", nil)
	}
	w, err := watch.NewTemplateWatcher(path, app.List, watch.WithLogger(app.Logger))
	if err != nil {
		return fmt.Errorf("failed to watch template: %w", err)
	}
	go func() {
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			app.Logger.Error("template watcher stopped", "path", path, "error", err)
		}
	}()
	app.Logger.Info("watching template", "path", path)
	return nil
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The UI owns the terminal; logs would corrupt the screen.
		app, err := loadAppWithLogs(cmd, io.Discard)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close() }()

		if err := tui.Run(cmd.Context(), app.List); err != nil {
			return fmt.Errorf("terminal UI: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "Reload the list when the template file changes")
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(tuiCmd)
}
