package pipeline

import (
	"context"

	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/ogm"
	"github.com/mkoizumi/chapmux/internal/planner"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// Split cuts a container into one MP4 per titled chapter: chapters are read
// as OGM cues, default-titled ones are dropped, and each remaining cue runs
// its own encode-and-normalize pipeline named after the chapter title.
type Split struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Split) Name() string { return "split" }

func (Split) Extensions() map[string]bool { return mkvExtensions }

func (Split) WantsFile(_ context.Context, path string) bool {
	return extMatches(path, mkvExtensions)
}

func (s Split) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("split")

	res := s.Runner.Run(ctx, tools.ExtractChaptersOGMArgs(path))
	if res.Err != nil {
		return job.StateFailed, &tools.ToolError{
			Stage:    "extract chapters",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	cues := ogm.DecodeCues(res.Stdout)
	if len(cues) == 0 {
		log.Info().Str("file", path).Msg("no titled chapters to split")
		return job.StateSkipped, nil
	}

	// Chapters of one container run sequentially; the batch pool already
	// provides the parallelism across containers.
	resolver := naming.NewCollisionResolver()
	promoted := 0
	for _, cue := range cues {
		if err := ctx.Err(); err != nil {
			return job.StateFailed, err
		}
		requested := naming.SplitOutput(path, cue.Title)
		out := resolver.Resolve(requested)
		if out != requested {
			log.Warn().
				Int("chapter", cue.Ordinal).
				Str("title", cue.Title).
				Str("output", out).
				Msg("title collides with an earlier chapter, using suffixed name")
		}
		state, err := job.Run(ctx, s.Runner, log, planner.SplitJob(path, out, cue))
		if err != nil {
			log.Error().Str("chapter", cue.Title).Err(err).Msg("chapter failed")
			return job.StateFailed, err
		}
		if state == job.StatePromoted {
			promoted++
		}
	}

	log.Debug().Int("chapters", len(cues)).Str("file", path).Msg("container split")
	if promoted == 0 {
		return job.StateSkipped, nil
	}
	return job.StatePromoted, nil
}
