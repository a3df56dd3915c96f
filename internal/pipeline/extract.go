package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
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
	"github.com/mkoizumi/chapmux/internal/tools"
)

var mkvExtensions = map[string]bool{".mkv": true}

// Extract exports a container's chapters into two editable siblings: the
// raw chapter XML and a time/title CSV record set. A later apply pass
// reconciles edits from the CSV back into the container.
type Extract struct {
	Cfg    *config.Config
	Runner tools.Runner
}

func (Extract) Name() string { return "extract" }

func (Extract) Extensions() map[string]bool { return mkvExtensions }

func (Extract) WantsFile(_ context.Context, path string) bool {
	return extMatches(path, mkvExtensions)
}

func (e Extract) Process(ctx context.Context, path string) (job.State, error) {
	log := logging.WithComponent("extract")

	xmlOut := naming.ChapterXML(path)
	if _, err := os.Stat(xmlOut); err == nil {
		log.Debug().Str("file", xmlOut).Msg("chapter XML already present")
		return job.StateSkipped, nil
	}

	tmp := naming.TempSibling(xmlOut, naming.Token(), ".xml")
	defer job.RemoveArtifacts(log, tmp)

	res := e.Runner.Run(ctx, tools.ExtractChaptersXMLArgs(path, tmp))
	if res.Err != nil {
		return job.StateFailed, &tools.ToolError{
			Stage:    "extract chapters",
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	// mkvextract exits zero without creating the output file when the
	// container carries no chapters.
	if _, err := os.Stat(tmp); errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("file", path).Msg("no chapters in container")
		return job.StateSkipped, nil
	}

	doc, err := chapxml.ParseFile(tmp)
	if err != nil {
		return job.StateFailed, err
	}
	if err := writeRecordSet(naming.ChapterCSV(path), doc.Rows()); err != nil {
		return job.StateFailed, err
	}
	if err := os.Rename(tmp, xmlOut); err != nil {
		return job.StateFailed, fmt.Errorf("promote chapter XML: %w", err)
	}

	log.Debug().Int("chapters", len(doc.Rows())).Str("file", path).Msg("chapters exported")
	return job.StatePromoted, nil
}

// writeRecordSet renders the rows as a TimeStart,ChapterName CSV and writes
// it atomically.
func writeRecordSet(path string, rows []chapxml.Row) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"TimeStart", "ChapterName"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.TimeStart, row.Title}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write chapter records: %w", err)
	}
	return nil
}
