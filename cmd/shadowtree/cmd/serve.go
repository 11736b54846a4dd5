package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-drift/shadow/pkg/core"
	"github.com/go-drift/shadow/pkg/inspector"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr string
		file string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Commit a tree and serve it for inspection over HTTP",
		Long: `Serve commits a tree (the demo tree unless --file is given) and starts the
inspector. Endpoints:

  GET /health          liveness and current revision
  GET /tree            the current revision with mount flags and state
  GET /families/:tag   the committed state of one family
  GET /metrics         Prometheus metrics

The server runs until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.DebugAddr
			}

			el, err := loadElement(file)
			if err != nil {
				return err
			}
			root, err := buildTree(core.SurfaceID(a.cfg.SurfaceID), el)
			if err != nil {
				return err
			}
			tree, err := a.commitTree(cmd.Context(), root)
			if err != nil {
				return err
			}

			srv := inspector.New(tree, a.logger)
			bound, err := srv.Start(addr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inspecting %s on http://%s\n", a.cfg.SurfaceName, bound)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: debug.addr from shadow.yaml)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "tree description to serve instead of the demo tree")
	return cmd
}
