package pipeline

import (
	"context"
	"os"

	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/planner"
	"github.com/mkoizumi/chapmux/internal/probe"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// Supported video file extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".ts":   true,
}

// Convert is the batch container-conversion operation: classify each file's
// codecs, then copy or transcode it into a metadata-stripped MP4.
type Convert struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Convert) Name() string { return "convert" }

func (Convert) Extensions() map[string]bool { return videoExtensions }

// WantsFile accepts known video extensions outright and probes everything
// else for a video stream, so an explicitly named file with an odd
// extension can still be converted.
func (c Convert) WantsFile(ctx context.Context, path string) bool {
	if extMatches(path, videoExtensions) {
		return true
	}
	return probe.HasVideoStream(ctx, c.Runner, path)
}

func (c Convert) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("convert")

	// Check before probing so already-converted files cost nothing.
	out := naming.MP4Output(path)
	if _, err := os.Stat(out); err == nil {
		log.Debug().Str("file", out).Msg("output already present")
		return job.StateSkipped, nil
	}

	cls, err := probe.Classify(ctx, c.Runner, path)
	if err != nil {
		return job.StateFailed, err
	}
	log.Debug().
		Str("video", cls.VideoCodec).
		Str("audio", cls.AudioCodec).
		Stringer("decision", cls.Decision).
		Str("file", path).
		Msg("classified")

	return job.Run(ctx, c.Runner, log, planner.ConvertJob(c.Cfg, cls, path))
}
