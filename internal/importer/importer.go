// Copyright (c) 2026 Library. All rights reserved.

/*
Package importer feeds a directory of text or HTML files into the catalogue.

Each file becomes one create call. A file that cannot be parsed or stored is
logged and counted; it never stops the run.
*/
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zrecovery/library-sub000/internal/library"
	"github.com/zrecovery/library-sub000/internal/platform/metrics"
)

// Creator is the part of the catalogue the importer needs.
type Creator interface {
	CreateArticle(ctx context.Context, input library.CreateInput) (int64, error)
}

// Options configures one import run.
type Options struct {
	Root        string
	Pattern     *regexp.Regexp
	Format      Format
	Concurrency int
}

// Report summarises a run.
type Report struct {
	Total    int
	Created  int
	Failures []string
}

// Importer walks a directory and creates one article per file.
type Importer struct {
	creator Creator
	logger  *slog.Logger
}

// New creates an [Importer].
func New(creator Creator, logger *slog.Logger) *Importer {
	return &Importer{creator: creator, logger: logger}
}

/*
Run imports every file under options.Root matching the format.

Returns:
  - Report: counts and the relative paths that failed
  - error: only when the directory cannot be walked or ctx is cancelled
*/
func (importer *Importer) Run(ctx context.Context, options Options) (Report, error) {
	files, err := Scan(options.Root, options.Format)
	if err != nil {
		return Report{}, err
	}

	report := Report{Total: len(files)}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(options.Concurrency, 1))

	for _, relPath := range files {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			id, err := importer.importFile(groupCtx, options, relPath)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failures = append(report.Failures, relPath)
				metrics.ImportedFilesTotal.WithLabelValues("failed").Inc()
				importer.logger.WarnContext(groupCtx, "import_file_failed",
					slog.String("file", relPath), slog.Any("error", err))
				return nil
			}
			report.Created++
			metrics.ImportedFilesTotal.WithLabelValues("created").Inc()
			importer.logger.DebugContext(groupCtx, "import_file_created",
				slog.String("file", relPath), slog.Int64("article_id", id))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return report, err
	}
	slices.Sort(report.Failures)

	importer.logger.InfoContext(ctx, "import_finished",
		slog.Int("total", report.Total),
		slog.Int("created", report.Created),
		slog.Int("failed", len(report.Failures)),
	)
	return report, nil
}

func (importer *Importer) importFile(ctx context.Context, options Options, relPath string) (int64, error) {
	content, err := os.ReadFile(filepath.Join(options.Root, filepath.FromSlash(relPath)))
	if err != nil {
		return 0, err
	}

	var input library.CreateInput
	switch options.Format {
	case FormatHTML:
		input, err = ParseHTML(relPath, content, options.Pattern)
	default:
		input, err = ParseText(relPath, content, options.Pattern)
	}
	if err != nil {
		return 0, err
	}
	return importer.creator.CreateArticle(ctx, input)
}

// Scan lists files under root with the format's extensions, as sorted
// slash-separated paths relative to root.
func Scan(root string, format Format) ([]string, error) {
	extensions := format.Extensions()
	var files []string

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(path))) {
			return nil
		}
		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(relPath))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.Sort(files)
	return files, nil
}
