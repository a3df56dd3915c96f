package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/display"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// Normalize loudness-normalizes every video file in place: the normalized
// copy is staged as a sibling temp with the source's own extension,
// verified, and renamed over the source. The original survives any failure.
type Normalize struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Normalize) Name() string { return "normalize" }

func (Normalize) Extensions() map[string]bool { return videoExtensions }

func (Normalize) WantsFile(_ context.Context, path string) bool {
	return extMatches(path, videoExtensions)
}

func (n Normalize) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("normalize")

	tmp := naming.TempSibling(path, naming.Token(), filepath.Ext(path))
	defer job.RemoveArtifacts(log, tmp)

	res := n.Runner.Run(ctx, tools.LoudnormArgs(path, tmp))
	if res.Err != nil {
		return job.StateFailed, &tools.ToolError{
			Stage:    "normalize audio",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	fi, err := os.Stat(tmp)
	if err != nil || fi.Size() == 0 {
		return job.StateFailed, fmt.Errorf("%w: %s", job.ErrEmptyOutput, tmp)
	}

	// The source is only replaced by a verified result; the temp is its
	// sibling, so the rename is atomic.
	if err := os.Rename(tmp, path); err != nil {
		return job.StateFailed, fmt.Errorf("replace source: %w", err)
	}

	log.Debug().Str("file", path).Str("size", display.FormatBytes(fi.Size())).Msg("normalized in place")
	return job.StatePromoted, nil
}
