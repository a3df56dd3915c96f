// Command chapmux is the CLI entrypoint for the chapter and container
// batch tools.
//
// It dispatches one subcommand per batch operation, validates configuration
// and tool availability, and runs the worker pool over the given paths.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkoizumi/chapmux/internal/bookmark"
	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/pipeline"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

const usageText = `chapmux — batch media and chapter tools

Usage: chapmux <command> [flags] <path>...

Commands:
  convert    convert video files to metadata-stripped MP4
  bookmarks  embed player bookmarks as chapters into matching containers
  extract    export container chapters to editable XML and CSV siblings
  apply      write edited chapter titles back into containers
  split      cut containers into one MP4 per titled chapter
  normalize  loudness-normalize video files in place
  check      report which external tools are available

Run "chapmux <command> -h" for command flags.
`

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}
	name, args := os.Args[1], os.Args[2:]

	// Ctrl-C finishes in-flight jobs and stops dispatching new ones.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch name {
	case "convert", "bookmarks", "extract", "apply", "split", "normalize":
		return runBatch(ctx, name, args)
	case "check":
		return runCheck(ctx)
	case "version", "-version", "--version":
		fmt.Printf("chapmux %s (%s)\n", version, commit)
		return 0
	case "-h", "-help", "--help", "help":
		fmt.Print(usageText)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "chapmux: unknown command %q\n\n", name)
		fmt.Fprint(os.Stderr, usageText)
		return 2
	}
}

// deps lists the external tools each operation invokes, checked up front so
// a missing binary fails the batch before any file is touched.
var deps = map[string][]string{
	"convert":   {tools.FFprobe, tools.FFmpeg, tools.HandBrake},
	"bookmarks": {tools.Mkvpropedit},
	"extract":   {tools.Mkvextract},
	"apply":     {tools.Mkvextract, tools.Mkvpropedit},
	"split":     {tools.Mkvextract, tools.HandBrake, tools.FFmpeg},
	"normalize": {tools.FFmpeg},
}

func runBatch(ctx context.Context, name string, args []string) int {
	cfg := config.Default()

	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel file jobs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn, or error")
	switch name {
	case "convert":
		fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "encoder quality for transcoded files")
		fs.StringVar(&cfg.EncoderPreset, "preset", cfg.EncoderPreset, "encoder speed preset")
	case "bookmarks":
		fs.Int64Var(&cfg.BookmarkOffsetMs, "offset", bookmark.DefaultOffsetMs,
			"milliseconds added to every bookmark time (may be negative)")
	}
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: chapmux %s [flags] <path>...\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	roots := fs.Args()
	if len(roots) == 0 {
		fmt.Fprintf(os.Stderr, "chapmux %s: no input paths given\n", name)
		fs.Usage()
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "chapmux %s: %v\n", name, err)
		return 2
	}

	logging.Configure(logging.Config{Level: cfg.LogLevel})
	log := logging.Base()

	if err := tools.CheckDeps(deps[name]...); err != nil {
		log.Error().Err(err).Msg("missing required tools")
		return 1
	}

	runner := tools.ExecRunner{}
	var op pipeline.Operation
	switch name {
	case "convert":
		op = pipeline.Convert{Cfg: &cfg, Runner: runner}
	case "bookmarks":
		op = pipeline.Bookmarks{Cfg: &cfg, Runner: runner}
	case "extract":
		op = pipeline.Extract{Cfg: &cfg, Runner: runner}
	case "apply":
		op = pipeline.Apply{Cfg: &cfg, Runner: runner}
	case "split":
		op = pipeline.Split{Cfg: &cfg, Runner: runner}
	case "normalize":
		op = pipeline.Normalize{Cfg: &cfg, Runner: runner}
	}

	stats := pipeline.Run(ctx, op, roots, cfg.Workers)
	if stats.Failed > 0 {
		return 1
	}
	return 0
}

// runCheck reports the availability and version of every external tool any
// operation can invoke. Informational only; always exits zero.
func runCheck(ctx context.Context) int {
	fmt.Printf("chapmux %s (%s)\n\n", version, commit)

	queries := []struct {
		name string
		argv []string
	}{
		{tools.FFmpeg, []string{tools.FFmpeg, "-version"}},
		{tools.FFprobe, []string{tools.FFprobe, "-version"}},
		{tools.HandBrake, []string{tools.HandBrake, "--version"}},
		{tools.Mkvextract, []string{tools.Mkvextract, "--version"}},
		{tools.Mkvpropedit, []string{tools.Mkvpropedit, "--version"}},
	}

	runner := tools.ExecRunner{}
	for _, q := range queries {
		if err := tools.CheckDeps(q.name); err != nil {
			fmt.Printf("  %-13s not found\n", q.name)
			continue
		}
		v := tools.Version(ctx, runner, q.argv...)
		if v == "" {
			v = "found (version query failed)"
		}
		fmt.Printf("  %-13s %s\n", q.name, v)
	}
	return 0
}
