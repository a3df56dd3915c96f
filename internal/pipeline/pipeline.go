// Package pipeline orchestrates batch processing: candidate discovery
// across root paths, a bounded worker pool, per-file failure isolation, and
// the batch summary.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
)

// ErrPathNotFound marks a root argument that does not exist.
var ErrPathNotFound = errors.New("path not found")

// Operation is one batch-processable unit of work: it selects candidate
// files and processes one file end-to-end. Process must be safe for
// concurrent calls with distinct paths; each path is handed to exactly one
// worker.
type Operation interface {
	Name() string
	// WantsFile decides whether an explicitly named root file is a
	// candidate. Directory walks only consult Extensions.
	WantsFile(ctx context.Context, path string) bool
	Extensions() map[string]bool
	Process(ctx context.Context, path string) (job.State, error)
}

// Stats aggregates terminal job states across one batch run.
type Stats struct {
	Total    int
	Promoted int
	Skipped  int
	Failed   int
}

// result pairs one candidate with its terminal state.
type result struct {
	path  string
	state job.State
	err   error
}

// Run enumerates all candidates under roots, then dispatches them to a
// worker pool of the given size. All candidates are known before the first
// job starts, so the reported total is stable. One job's failure never
// cancels its siblings; cancellation of ctx stops dispatch of new jobs.
func Run(ctx context.Context, op Operation, roots []string, workers int) Stats {
	log := logging.WithComponent(op.Name())

	var stats Stats
	files, bad := discover(ctx, op, roots, log)
	stats.Failed += bad
	stats.Total = len(files) + bad

	if len(files) == 0 {
		log.Info().Msg("no candidate files found")
		return stats
	}
	log.Info().Int("files", len(files)).Int("workers", workers).Msg("starting batch")

	// Indexed results slice: each worker writes only its own slot, so no
	// lock is needed and completion order doesn't matter.
	results := make([]result, len(files))
	g := &errgroup.Group{}
	g.SetLimit(workers)

	for i, path := range files {
		i, path := i, path
		if ctx.Err() != nil {
			// Interrupted: jobs not yet dispatched are recorded as failed
			// so the summary still accounts for every candidate.
			results[i] = result{path: path, state: job.StateFailed, err: ctx.Err()}
			continue
		}
		g.Go(func() error {
			state, err := op.Process(ctx, path)
			results[i] = result{path: path, state: state, err: err}
			logResult(log, results[i])
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		switch res.state {
		case job.StatePromoted:
			stats.Promoted++
		case job.StateSkipped:
			stats.Skipped++
		default:
			stats.Failed++
		}
	}

	log.Info().
		Int("total", stats.Total).
		Int("done", stats.Promoted).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("batch finished")
	return stats
}

func logResult(log zerolog.Logger, res result) {
	base := filepath.Base(res.path)
	switch res.state {
	case job.StatePromoted:
		log.Info().Str("file", base).Msg("done")
	case job.StateSkipped:
		log.Info().Str("file", base).Msg("skipped")
	default:
		log.Error().Str("file", base).Err(res.err).Msg("failed")
	}
}

// discover expands roots into the candidate list: files are filtered
// through the operation's WantsFile check, directories are walked
// recursively for matching extensions and sorted for a deterministic
// order. Unusable roots are logged and counted, never fatal.
func discover(ctx context.Context, op Operation, roots []string, log zerolog.Logger) ([]string, int) {
	var files []string
	bad := 0

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			log.Error().Str("path", root).Err(ErrPathNotFound).Msg("skipping root")
			bad++
			continue
		}

		if !info.IsDir() {
			if op.WantsFile(ctx, root) {
				files = append(files, root)
			} else {
				log.Warn().Str("path", root).Msg("not a candidate for this operation")
			}
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if op.Extensions()[strings.ToLower(filepath.Ext(path))] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			log.Error().Str("path", root).Err(err).Msg("walk failed")
			bad++
		}
	}

	sort.Strings(files)
	return files, bad
}

// extMatches reports whether path has one of the lowercase extensions.
func extMatches(path string, exts map[string]bool) bool {
	return exts[strings.ToLower(filepath.Ext(path))]
}
