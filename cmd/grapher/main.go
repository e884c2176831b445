// # cmd/grapher/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/disruptiq/topological-grapher/internal/app"
	"github.com/disruptiq/topological-grapher/internal/config"
	"github.com/disruptiq/topological-grapher/internal/extract"
	"github.com/disruptiq/topological-grapher/internal/graph"
	"github.com/disruptiq/topological-grapher/internal/output"
)

var (
	filePath   = flag.String("file", "", "Extract a single file instead of scanning the whole project")
	root       = flag.String("root", ".", "Project root directory")
	tsconfig   = flag.String("tsconfig", "", "Path to tsconfig file (default: discover from root)")
	outPath    = flag.String("out", "", "Write output to file instead of stdout")
	format     = flag.String("format", "json", "Output format: json or dot")
	layers     = flag.Bool("layers", false, "Print topological dependency layers instead of the graph")
	workers    = flag.Int("workers", 0, "Number of parallel extraction workers (default: CPU count)")
	watch      = flag.Bool("watch", false, "Rescan and rewrite output on file changes")
	configPath = flag.String("config", "", "Path to TOML config file")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "0.3.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("grapher v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}

	if *format != "json" && *format != "dot" {
		fmt.Fprintf(os.Stderr, "unknown format %q: expected json or dot\n", *format)
		os.Exit(2)
	}
	if *layers && (*outPath != "" || *filePath != "") {
		fmt.Fprintln(os.Stderr, "--layers needs a whole-project scan and prints to stdout; it cannot be combined with --out or --file")
		os.Exit(2)
	}
	if *watch && *filePath != "" {
		fmt.Fprintln(os.Stderr, "--watch works on a project root, not a single file")
		os.Exit(2)
	}

	a := app.New(cfg)
	a.TSConfigPath = *tsconfig

	if *filePath != "" {
		res, err := a.ExtractFile(*root, *filePath)
		if err != nil {
			slog.Error("extraction failed", "file", *filePath, "error", err)
			os.Exit(1)
		}
		if err := emit(res); err != nil {
			slog.Error("failed to write output", "error", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, err := a.ScanProject(ctx, *root)
	if err != nil {
		slog.Error("scan failed", "root", *root, "error", err)
		os.Exit(1)
	}

	if *layers {
		if err := printLayers(g); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		return
	}

	res := g.Result()
	if err := emit(res); err != nil {
		slog.Error("failed to write output", "error", err)
		os.Exit(1)
	}
	writeConfigured(cfg, res)

	if *watch {
		err := a.Watch(ctx, *root, func(g *graph.Graph) {
			res := g.Result()
			if err := emit(res); err != nil {
				slog.Error("failed to write output", "error", err)
			}
			writeConfigured(cfg, res)
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("watch failed", "error", err)
			os.Exit(1)
		}
	}
}

func emit(res *extract.Result) error {
	var data []byte
	switch *format {
	case "dot":
		data = []byte(output.DOT(res))
	default:
		var err error
		data, err = output.JSON(res, true)
		if err != nil {
			return err
		}
		data = append(data, '\n')
	}

	if *outPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(*outPath, data, 0644)
}

// writeConfigured honors the config file's output paths in addition to
// whatever the flags selected.
func writeConfigured(cfg *config.Config, res *extract.Result) {
	if cfg.Output.JSON != "" {
		data, err := output.JSON(res, true)
		if err == nil {
			err = os.WriteFile(cfg.Output.JSON, append(data, '\n'), 0644)
		}
		if err != nil {
			slog.Error("failed to write json output", "path", cfg.Output.JSON, "error", err)
		}
	}
	if cfg.Output.DOT != "" {
		if err := os.WriteFile(cfg.Output.DOT, []byte(output.DOT(res)), 0644); err != nil {
			slog.Error("failed to write dot output", "path", cfg.Output.DOT, "error", err)
		}
	}
}

func printLayers(g *graph.Graph) error {
	layers, err := g.Layers()
	if err != nil {
		return err
	}
	for i, layer := range layers {
		fmt.Printf("layer %d:\n", i)
		for _, id := range layer {
			fmt.Printf("  %s\n", id)
		}
	}
	return nil
}
