// Copyright (c) 2026 Library. All rights reserved.

// Command import loads a directory of text or HTML files into the catalogue.
//
//	import --root ./books --format txt --concurrency 4
//	import --root ./pages --format html --dry-run
//
// Without --dry-run it uses the same DATABASE_URL configuration as the API
// server and applies pending migrations first.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zrecovery/library-sub000/internal/importer"
	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/config"
	"github.com/zrecovery/library-sub000/internal/platform/constants"
	"github.com/zrecovery/library-sub000/internal/platform/migration"
	pgstore "github.com/zrecovery/library-sub000/internal/platform/postgres"
)

type importOptions struct {
	root        string
	pattern     string
	format      string
	concurrency int
	dryRun      bool
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newImportCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:           "import",
		Short:         "Import articles from a directory of files",
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.root, "root", "", "Directory to scan recursively (required)")
	cmd.Flags().StringVar(&opts.pattern, "pattern", importer.DefaultPattern, "Regexp over the relative path with named groups author, series, order, title")
	cmd.Flags().StringVar(&opts.format, "format", string(importer.FormatText), "File format: txt or html")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 4, "Files imported in parallel")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Import into an in-memory catalogue and report only")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Log every created article")

	_ = cmd.MarkFlagRequired("root")

	return cmd
}

func runImport(ctx context.Context, opts importOptions) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName), slog.String("cmd", "import"))

	pattern, err := regexp.Compile(opts.pattern)
	if err != nil {
		return fmt.Errorf("invalid --pattern: %w", err)
	}

	format := importer.Format(opts.format)
	if format != importer.FormatText && format != importer.FormatHTML {
		return fmt.Errorf("invalid --format %q: want txt or html", opts.format)
	}

	repository, closeStore, err := openRepository(ctx, opts.dryRun, log)
	if err != nil {
		return err
	}
	defer closeStore()

	service := library.NewService(repository, log)
	report, err := importer.New(service, log).Run(ctx, importer.Options{
		Root:        opts.root,
		Pattern:     pattern,
		Format:      format,
		Concurrency: opts.concurrency,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%d/%d imported\n", report.Created, report.Total)
	for _, failure := range report.Failures {
		fmt.Println("failed:", failure)
	}
	return nil
}

func openRepository(ctx context.Context, dryRun bool, log *slog.Logger) (library.Repository, func(), error) {
	if dryRun {
		log.Info("dry_run_enabled")
		return library.NewMemoryRepository(), func() {}, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.StoreDriver == config.StoreMemory {
		return nil, nil, fmt.Errorf("STORE_DRIVER=memory cannot persist an import; use --dry-run")
	}

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return nil, nil, err
	}

	pool, err := pgstore.NewPool(ctx, cfg.DatabaseURL, cfg.Pool, log)
	if err != nil {
		return nil, nil, err
	}
	return library.NewPostgresRepository(pool), pool.Close, nil
}
