// # internal/app/app.go
//
// Package app wires the pipeline together: walk the project, parse
// and extract each file, merge the per-file records into one graph.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/disruptiq/topological-grapher/internal/config"
	"github.com/disruptiq/topological-grapher/internal/extract"
	"github.com/disruptiq/topological-grapher/internal/graph"
	"github.com/disruptiq/topological-grapher/internal/oracle"
	"github.com/disruptiq/topological-grapher/internal/parser"
	"github.com/disruptiq/topological-grapher/internal/walker"
	"github.com/disruptiq/topological-grapher/internal/watcher"
)

type App struct {
	cfg    *config.Config
	parser *parser.Parser

	// TSConfigPath pins the tsconfig to load. Empty means discover by
	// walking up from the project root.
	TSConfigPath string
}

func New(cfg *config.Config) *App {
	return &App{
		cfg:    cfg,
		parser: parser.NewParser(parser.NewGrammarLoader()),
	}
}

// newProject builds the shared resolution state for one invocation.
func (a *App) newProject(root string) (*oracle.Project, error) {
	tsconfig, err := a.loadTSConfig(root)
	if err != nil {
		return nil, err
	}
	return oracle.NewProject(a.parser, root, tsconfig)
}

func (a *App) loadTSConfig(root string) (*config.TSConfig, error) {
	path := a.TSConfigPath
	if path == "" {
		found, ok := config.FindTSConfig(filepath.Join(root, "tsconfig.json"))
		if !ok {
			return nil, nil
		}
		path = found
	}

	tsconfig, err := config.LoadTSConfig(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded tsconfig", "path", path)
	return tsconfig, nil
}

// ExtractFile runs the pipeline over a single file and returns its
// extraction record. file may be absolute or relative to root.
func (a *App) ExtractFile(root, file string) (*extract.Result, error) {
	project, err := a.newProject(root)
	if err != nil {
		return nil, err
	}
	defer project.Close()

	abs := file
	if !filepath.IsAbs(abs) {
		abs, err = filepath.Abs(file)
		if err != nil {
			return nil, err
		}
	}
	rel, err := project.Rel(abs)
	if err != nil || strings.HasPrefix(rel, "../") {
		return nil, fmt.Errorf("file is outside the project root: %s", file)
	}
	if !parser.Supported(rel) {
		return nil, fmt.Errorf("unsupported file type: %s", file)
	}

	o, err := project.OracleFor(rel)
	if err != nil {
		return nil, err
	}
	return extract.Extract(o.Context(), o), nil
}

// ScanProject runs the pipeline over every supported file under the
// root in parallel and merges the results into one graph.
func (a *App) ScanProject(ctx context.Context, root string) (*graph.Graph, error) {
	runID := uuid.NewString()
	start := time.Now()

	w, err := walker.New(root, a.cfg.Exclude.Dirs, a.cfg.Exclude.Files)
	if err != nil {
		return nil, err
	}
	files, err := w.Walk()
	if err != nil {
		return nil, err
	}
	slog.Info("scan started", "run_id", runID, "root", root, "files", len(files))

	project, err := a.newProject(root)
	if err != nil {
		return nil, err
	}
	defer project.Close()

	g := graph.New()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(a.workers())
	for _, rel := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := project.OracleFor(rel)
			if err != nil {
				// A file that fails to parse degrades to a missing
				// graph fragment, not a failed scan.
				slog.Warn("skipping file", "run_id", runID, "file", rel, "error", err)
				return nil
			}
			g.Merge(extract.Extract(o.Context(), o))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	slog.Info("scan finished",
		"run_id", runID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return g, nil
}

// Watch rescans the project whenever source files change, invoking
// onResult with each fresh graph. Blocks until ctx is cancelled.
func (a *App) Watch(ctx context.Context, root string, onResult func(*graph.Graph)) error {
	rescan := func(changed []string) {
		slog.Info("change detected", "files", len(changed))
		g, err := a.ScanProject(ctx, root)
		if err != nil {
			slog.Error("rescan failed", "error", err)
			return
		}
		onResult(g)
	}

	w, err := watcher.New(a.cfg.Watch.Debounce, a.cfg.Exclude.Dirs, rescan)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(root); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", root)

	<-ctx.Done()
	return ctx.Err()
}

func (a *App) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return runtime.NumCPU()
}
