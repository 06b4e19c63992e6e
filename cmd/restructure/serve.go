// File: serve.go
// Role: "restructure serve" — opens a diagnostics.Store and launches
// httpapi's read-only dashboard over it.
package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/cfgforge/restructure/diagnostics"
	"github.com/cfgforge/restructure/httpapi"
	"github.com/cfgforge/restructure/restructure"
)

type serveOpts struct {
	dbPath       string
	artifactsDir string
	addr         string
}

func newServeCmd() *cobra.Command {
	opts := serveOpts{dbPath: "restructure.sqlite", addr: ":8080"}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve per-region status and debug artifacts over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return serve(c, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", opts.dbPath, "diagnostics sqlite file to read status from")
	cmd.Flags().StringVar(&opts.artifactsDir, "artifacts-dir", "", "directory .svg debug artifacts were written into (artifact routes 404 if empty)")
	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "address to listen on")

	return cmd
}

func serve(c *cobra.Command, opts *serveOpts) error {
	logger := restructure.LoggerFromContext(c.Context())

	store, err := diagnostics.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("restructure serve: %w", err)
	}
	defer store.Close()

	app := httpapi.NewApp(store, opts.artifactsDir)

	logger.Info("serving diagnostics dashboard", "addr", opts.addr, "db", opts.dbPath)
	if err := http.ListenAndServe(opts.addr, app.Handler()); err != nil {
		return fmt.Errorf("restructure serve: %w", err)
	}
	return nil
}
