package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/renameio/v2"

	"github.com/mkoizumi/chapmux/internal/bookmark"
	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/ogm"
	"github.com/mkoizumi/chapmux/internal/tools"
)

var bookmarkExtensions = map[string]bool{".pbf": true}

// Bookmarks embeds player bookmarks as chapters into the matching
// container: decode the .pbf, shift and complete the chapter list, write a
// temp OGM chapter file, and hand it to the chapter write-back tool.
type Bookmarks struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Bookmarks) Name() string { return "bookmarks" }

func (Bookmarks) Extensions() map[string]bool { return bookmarkExtensions }

func (Bookmarks) WantsFile(_ context.Context, path string) bool {
	return extMatches(path, bookmarkExtensions)
}

func (b Bookmarks) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("bookmarks")

	data, err := os.ReadFile(path)
	if err != nil {
		return job.StateFailed, err
	}
	list, err := bookmark.Decode(data, b.Cfg.BookmarkOffsetMs)
	if err != nil {
		return job.StateFailed, err
	}
	if len(list) == 0 {
		log.Warn().Str("file", path).Msg("no convertible bookmarks")
		return job.StateSkipped, nil
	}
	list = list.EnsureLeadChapter()

	mkv := naming.BookmarkSibling(path)
	if _, err := os.Stat(mkv); err != nil {
		return job.StateFailed, fmt.Errorf("no matching container for %s: %w", path, err)
	}

	tmp := naming.TempChapterText(path, naming.Token())
	if err := renameio.WriteFile(tmp, []byte(ogm.Encode(list)), 0o644); err != nil {
		return job.StateFailed, fmt.Errorf("write chapter file: %w", err)
	}
	defer job.RemoveArtifacts(log, tmp)

	res := b.Runner.Run(ctx, tools.WriteChaptersArgs(mkv, tmp))
	if res.Err != nil {
		return job.StateFailed, &tools.ToolError{
			Stage:    "write chapters",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	log.Debug().Int("chapters", len(list)).Str("container", mkv).Msg("chapters embedded")
	return job.StatePromoted, nil
}
