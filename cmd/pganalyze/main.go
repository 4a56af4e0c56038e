// Command pganalyze analyzes a corpus of WeBWorK PG problem files and
// writes deterministic TSV reports, optionally persisting per-file
// results to SQLite for later querying over MCP.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/analyzer"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/classify"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/config"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/mcp"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/report"
	"github.com/vosslab/webwork-pgml-opl-training-set/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pganalyze",
		Short:         "Deterministic corpus analyzer for WeBWorK PG problem files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		outDir     string
		workers    int
		configPath string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "analyze <root>...",
		Short: "Classify every .pg file under the given roots and write the report tree",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if workers > 0 {
				cfg.Workers = workers
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}

			logger, err := newLogger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			opts := []analyzer.Option{
				analyzer.WithWorkers(cfg.Workers),
				analyzer.WithLogger(logger),
				analyzer.WithClassifier(classify.New(cfg.ClassifyOptions()...)),
				analyzer.WithStateOptions(cfg.StateOptions()...),
			}
			if cfg.DBPath != "" {
				store, err := storage.NewSQLiteStorage(cfg.DBPath)
				if err != nil {
					return fmt.Errorf("opening database: %w", err)
				}
				defer func() { _ = store.Close() }()
				opts = append(opts, analyzer.WithStorage(store))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			state, err := analyzer.New(opts...).Analyze(ctx, args)
			if err != nil {
				return err
			}
			if err := report.Write(outDir, report.Render(state)); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(),
				"analyzed %d files (%d failed, %d flagged for review), reports in %s\n",
				state.TotalFiles, state.FailedFiles, state.NeedsReviewTotal, outDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "pg_analysis", "Directory for the report tree")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent file workers (default: number of CPUs)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for per-file results (disabled when empty)")
	return cmd
}

func newServeCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only corpus query tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the MCP protocol
			log.SetOutput(os.Stderr)
			log.Printf("pganalyze MCP server v%s starting...", version)
			log.Printf("Build Mode: %s, Driver: %s", storage.BuildMode, storage.DriverName)

			server, err := mcp.NewServer(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			errChan := make(chan error, 1)
			go func() {
				log.Println("MCP server ready, listening on stdio...")
				errChan <- server.Serve(ctx)
			}()

			select {
			case sig := <-sigChan:
				log.Printf("Received signal %v, shutting down gracefully...", sig)
				cancel()
			case err := <-errChan:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			}

			log.Println("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", mcp.DefaultDBPath, "SQLite database written by analyze --db")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pganalyze\n")
			fmt.Fprintf(out, "Version: %s\n", version)
			fmt.Fprintf(out, "Build Time: %s\n", buildTime)
			fmt.Fprintf(out, "Build Mode: %s\n", storage.BuildMode)
			fmt.Fprintf(out, "SQLite Driver: %s\n", storage.DriverName)
			fmt.Fprintf(out, "Report Schema: %s\n", report.SchemaVersion)
		},
	}
}

// newLogger builds the stderr JSON logger used during analysis.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
