package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"github.com/mkoizumi/chapmux/internal/chapxml"
	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/logging"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/reconcile"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// Apply reconciles externally edited chapter titles back into a container.
// It reads the edited CSV sibling, rewrites matching titles in the chapter
// XML keyed by start time, writes the XML back into the container, and
// consumes both siblings on success.
type Apply struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Apply) Name() string { return "apply" }

func (Apply) Extensions() map[string]bool { return mkvExtensions }

func (Apply) WantsFile(_ context.Context, path string) bool {
	return extMatches(path, mkvExtensions)
}

func (a Apply) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("apply")

	csvPath := naming.ChapterCSV(path)
	f, err := os.Open(csvPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("file", path).Msg("no edited record set")
		return job.StateSkipped, nil
	}
	if err != nil {
		return job.StateFailed, err
	}
	titles, err := reconcile.ParseRecords(f)
	f.Close()
	if err != nil {
		return job.StateFailed, err
	}

	xmlPath := naming.ChapterXML(path)
	doc, tmp, err := a.loadChapterXML(ctx, path, xmlPath)
	if tmp != "" {
		defer job.RemoveArtifacts(log, tmp)
		xmlPath = tmp
	}
	if err != nil {
		return job.StateFailed, err
	}

	rewritten := doc.RewriteTitles(titles)
	log.Debug().
		Int("records", len(titles)).
		Int("rewritten", rewritten).
		Str("file", path).
		Msg("titles reconciled")

	data, err := doc.Bytes()
	if err != nil {
		return job.StateFailed, fmt.Errorf("serialize chapter XML: %w", err)
	}
	if err := renameio.WriteFile(xmlPath, data, 0o644); err != nil {
		return job.StateFailed, fmt.Errorf("write chapter XML: %w", err)
	}

	res := a.Runner.Run(ctx, tools.WriteChaptersArgs(path, xmlPath))
	if res.Err != nil {
		return job.StateFailed, &tools.ToolError{
			Stage:    "write chapters",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	// The editable siblings are consumed only after the container holds
	// the new titles, so a failed write-back leaves everything to retry.
	job.RemoveArtifacts(log, csvPath, naming.ChapterXML(path))
	return job.StatePromoted, nil
}

// loadChapterXML prefers the editable XML sibling left behind by a prior
// export; when it is absent the chapters are pulled from the container into
// a temp file instead. The returned tmp path is empty when the sibling was
// used.
func (a Apply) loadChapterXML(ctx context.Context, mkv, xmlPath string) (*chapxml.Document, string, error) {
	if _, err := os.Stat(xmlPath); err == nil {
		doc, err := chapxml.ParseFile(xmlPath)
		return doc, "", err
	}

	tmp := naming.TempSibling(xmlPath, naming.Token(), ".xml")
	res := a.Runner.Run(ctx, tools.ExtractChaptersXMLArgs(mkv, tmp))
	if res.Err != nil {
		return nil, tmp, &tools.ToolError{
			Stage:    "extract chapters",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}
	if _, err := os.Stat(tmp); errors.Is(err, fs.ErrNotExist) {
		return nil, tmp, chapxml.ErrNoChapters
	}
	doc, err := chapxml.ParseFile(tmp)
	return doc, tmp, err
}
