// Package planner turns a classified file into a concrete pipeline job:
// which tools run, in what order, and through which staged temp paths.
package planner

import (
	"github.com/mkoizumi/chapmux/internal/config"
	"github.com/mkoizumi/chapmux/internal/job"
	"github.com/mkoizumi/chapmux/internal/naming"
	"github.com/mkoizumi/chapmux/internal/ogm"
	"github.com/mkoizumi/chapmux/internal/probe"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// ConvertJob builds the two-stage container-conversion pipeline for one
// source file:
//
//	stage 1: copy (safe codecs) or HandBrake encode, to a temp MP4
//	stage 2: ffmpeg metadata strip, temp -> second temp
//	promote: second temp -> "<stem>.mp4"
//
// Both temps live next to the final output and carry a per-job token.
func ConvertJob(cfg *config.Config, cls probe.Classification, src string) *job.Job {
	out := naming.MP4Output(src)
	token := naming.Token()
	encoded := naming.TempSibling(src, token, ".enc.mp4")
	stripped := naming.TempSibling(src, token, ".out.mp4")

	j := job.New(src, out)
	if cls.Decision == probe.DecisionCopy {
		j.AddStage(tools.CopyArgs(src, encoded), encoded)
	} else {
		j.AddStage(tools.EncodeArgs(src, encoded, cfg.Quality, cfg.EncoderPreset), encoded)
	}
	j.AddStage(tools.StripMetadataArgs(encoded, stripped), stripped)
	return j
}

// SplitJob builds the two-stage single-chapter extraction pipeline:
//
//	stage 1: HandBrake encode of one chapter, to a temp MP4
//	stage 2: ffmpeg loudness normalization, temp -> second temp
//	promote: second temp -> out
//
// out is the collision-resolved destination for the chapter, normally
// "<chapter title>.mp4" next to the source.
func SplitJob(src, out string, cue ogm.Cue) *job.Job {
	token := naming.Token()
	encoded := naming.TempSibling(out, token, ".enc.mp4")
	normalized := naming.TempSibling(out, token, ".out.mp4")

	j := job.New(src, out)
	j.AddStage(tools.ExtractChapterArgs(src, encoded, cue.Ordinal), encoded)
	j.AddStage(tools.LoudnormArgs(encoded, normalized), normalized)
	return j
}
