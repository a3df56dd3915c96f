package planner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/ogm"
	"github.com/mkoizumi/chapmux/internal/probe"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// captureRunner records invocations and writes whatever file path appears
// as the last argv element, emulating an output-writing tool.
type captureRunner struct {
	invs []tools.Invocation
}

func (c *captureRunner) Run(_ context.Context, inv tools.Invocation) tools.Result {
	c.invs = append(c.invs, inv)
	last := inv.Argv[len(inv.Argv)-1]
	_ = os.WriteFile(last, []byte("data"), 0o644)
	return tools.Result{}
}

func TestConvertJob_CopyPath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	cfg := config.Default()

	j := ConvertJob(&cfg, probe.Classification{Decision: probe.DecisionCopy}, src)
	r := &captureRunner{}

	state, err := job.Run(context.Background(), r, zerolog.Nop(), j)
	require.NoError(t, err)
	assert.Equal(t, job.StatePromoted, state)
	assert.FileExists(t, filepath.Join(dir, "movie.mp4"))

	require.Len(t, r.invs, 2)
	assert.Equal(t, "copy", r.invs[0].Stage)
	assert.Equal(t, tools.FFmpeg, r.invs[0].Argv[0])
	assert.Contains(t, r.invs[0].Argv, "copy")
	assert.Equal(t, "strip metadata", r.invs[1].Stage)
	assert.Contains(t, r.invs[1].Argv, "-map_metadata")

	// Stage 2 reads stage 1's temp output.
	stage1Out := r.invs[0].Argv[len(r.invs[0].Argv)-1]
	assert.Contains(t, r.invs[1].Argv, stage1Out)
	assert.NoFileExists(t, stage1Out, "intermediate temp must be cleaned up")
}

func TestConvertJob_TranscodePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.avi")
	cfg := config.Default()

	j := ConvertJob(&cfg, probe.Classification{Decision: probe.DecisionTranscode}, src)
	r := &captureRunner{}

	state, err := job.Run(context.Background(), r, zerolog.Nop(), j)
	require.NoError(t, err)
	assert.Equal(t, job.StatePromoted, state)

	require.Len(t, r.invs, 2)
	assert.Equal(t, "encode", r.invs[0].Stage)
	assert.Equal(t, tools.HandBrake, r.invs[0].Argv[0])
	assert.Contains(t, r.invs[0].Argv, "40") // default quality
	assert.Contains(t, r.invs[0].Argv, "slowest")
	assert.FileExists(t, filepath.Join(dir, "old.mp4"))
}

func TestSplitJob(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "concert.mkv")

	cue := ogm.Cue{Ordinal: 3, Time: 90500, Title: "First Song"}
	j := SplitJob(src, naming.SplitOutput(src, cue.Title), cue)
	r := &captureRunner{}

	state, err := job.Run(context.Background(), r, zerolog.Nop(), j)
	require.NoError(t, err)
	assert.Equal(t, job.StatePromoted, state)
	assert.FileExists(t, filepath.Join(dir, "First Song.mp4"))

	require.Len(t, r.invs, 2)
	assert.Contains(t, r.invs[0].Argv, "3-3")
	assert.Equal(t, "normalize audio", r.invs[1].Stage)
	assert.Contains(t, r.invs[1].Argv, "loudnorm=I=-5:LRA=7:TP=0")
}

func TestJobs_UseDistinctTempPaths(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "movie.mkv")
	cfg := config.Default()
	cls := probe.Classification{Decision: probe.DecisionCopy}

	a := ConvertJob(&cfg, cls, src)
	b := ConvertJob(&cfg, cls, src)

	// Same source, different jobs: temp paths must never collide.
	ra, rb := &captureRunner{}, &captureRunner{}
	_, _ = job.Run(context.Background(), ra, zerolog.Nop(), a)
	outA := ra.invs[0].Argv[len(ra.invs[0].Argv)-1]
	_ = os.Remove(filepath.Join(dir, "movie.mp4"))
	_, _ = job.Run(context.Background(), rb, zerolog.Nop(), b)
	outB := rb.invs[0].Argv[len(rb.invs[0].Argv)-1]
	assert.NotEqual(t, outA, outB)
}
