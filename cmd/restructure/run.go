// File: run.go
// Role: "restructure run <region-file>" — loads a region file, runs every
// region through jobrunner.RunAll, optionally records outcomes to a
// diagnostics.Store, and prints the colorized status table.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cfgforge/restructure/diagnostics"
	"github.com/cfgforge/restructure/jobrunner"
	"github.com/cfgforge/restructure/restructure"
)

type runOpts struct {
	configPath   string
	dbPath       string
	artifactsDir string
	concurrency  int
}

func newRunCmd() *cobra.Command {
	opts := runOpts{concurrency: 4}

	cmd := &cobra.Command{
		Use:   "run <region-file>",
		Short: "Restructure every region in a region file and print its status",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runRegions(c, args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "path to a restructure.toml config (defaults built in if omitted)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "diagnostics sqlite file to record outcomes into (skipped if empty)")
	cmd.Flags().StringVar(&opts.artifactsDir, "artifacts-dir", "", "directory to write .svg debug artifacts into (dump_dots must also be enabled)")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", opts.concurrency, "maximum number of regions restructured at once (0 = unbounded)")

	return cmd
}

func runRegions(c *cobra.Command, regionFilePath string, opts *runOpts) error {
	logger := restructure.LoggerFromContext(c.Context())

	cfg := restructure.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := restructure.LoadConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("restructure run: %w", err)
		}
		cfg = loaded
	}

	regions, err := loadRegions(regionFilePath)
	if err != nil {
		return fmt.Errorf("restructure run: %w", err)
	}
	logger.Info("loaded regions", "count", len(regions), "file", regionFilePath)

	dbPath := opts.dbPath
	if dbPath != "" {
		abs, err := filepath.Abs(dbPath)
		if err != nil {
			return fmt.Errorf("restructure run: %w", err)
		}
		dbPath = abs
	}

	if opts.artifactsDir != "" {
		if err := os.MkdirAll(opts.artifactsDir, 0o755); err != nil {
			return fmt.Errorf("restructure run: artifacts-dir: %w", err)
		}
		if err := os.Chdir(opts.artifactsDir); err != nil {
			return fmt.Errorf("restructure run: artifacts-dir: %w", err)
		}
	}

	results, runErr := jobrunner.RunAll(c.Context(), regions, cfg, opts.concurrency)

	if dbPath != "" {
		store, err := diagnostics.Open(dbPath)
		if err != nil {
			return fmt.Errorf("restructure run: %w", err)
		}
		defer store.Close()
		if err := store.RecordAll(c.Context(), results, time.Now().UTC()); err != nil {
			return fmt.Errorf("restructure run: %w", err)
		}
	}

	printResultsTable(c.OutOrStdout(), results)

	if runErr != nil {
		return fmt.Errorf("restructure run: %w", runErr)
	}
	return nil
}
