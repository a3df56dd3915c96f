// Package job is the staged pipeline executor: it runs a classified file's
// external-tool stages in order, stages output in temp paths, verifies the
// result, promotes it to the final path, and guarantees temp cleanup on
// every exit path.
package job

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/mkoizumi/chapmux/internal/display"
	"github.com/mkoizumi/chapmux/internal/tools"
)

// ErrEmptyOutput marks a stage whose tool exited zero but produced a
// missing or zero-byte output file.
var ErrEmptyOutput = errors.New("tool reported success but output is empty")

// State is the executor state machine position. Promoted, Skipped, and
// Failed are terminal.
type State int

const (
	StateClassified State = iota
	StateStaged
	StateVerified
	StatePromoted
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateClassified:
		return "classified"
	case StateStaged:
		return "staged"
	case StateVerified:
		return "verified"
	case StatePromoted:
		return "promoted"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Job is one file's pipeline work: an ordered list of stages writing
// through temp paths toward one final output. A Job is owned by exactly one
// worker for its whole lifetime.
type Job struct {
	Source string
	Output string

	stages    []tools.Invocation
	staged    string // output path of the last stage; verified then promoted
	artifacts []string
}

// New creates a job for one source file and its final output path.
func New(source, output string) *Job {
	return &Job{Source: source, Output: output}
}

// AddStage appends an invocation whose output (if any) is written to
// stagedPath. Every staged path is registered as a temp artifact; the last
// stage's path is the one verified and promoted. Intermediate stage outputs
// are deleted only after the whole pipeline finishes, never mid-pipeline,
// because a later stage may read them.
func (j *Job) AddStage(inv tools.Invocation, stagedPath string) {
	j.stages = append(j.stages, inv)
	if stagedPath != "" {
		j.staged = stagedPath
		j.artifacts = append(j.artifacts, stagedPath)
	}
}

// Run drives the job to a terminal state. Cleanup of registered temp
// artifacts runs exactly once regardless of exit path; a promoted output is
// naturally excluded because the rename already moved it away.
func Run(ctx context.Context, r tools.Runner, log zerolog.Logger, j *Job) (State, error) {
	// Idempotence: presence of the final output means a previous run
	// already converted this file. No tool is invoked.
	if _, err := os.Stat(j.Output); err == nil {
		return StateSkipped, nil
	}

	defer RemoveArtifacts(log, j.artifacts...)

	// Classified -> Staged: run every stage in order.
	for _, inv := range j.stages {
		if err := ctx.Err(); err != nil {
			return StateFailed, err
		}
		log.Debug().Str("stage", inv.Stage).Msg(inv.String())
		res := r.Run(ctx, inv)
		if res.Err != nil {
			return StateFailed, &tools.ToolError{
				Stage:    inv.Stage,
				ExitCode: res.ExitCode,
				Stderr:   res.Stderr,
			}
		}
	}

	// Staged -> Verified: guard against tools that exit zero but wrote
	// nothing.
	fi, err := os.Stat(j.staged)
	if err != nil || fi.Size() == 0 {
		return StateFailed, fmt.Errorf("%w: %s", ErrEmptyOutput, j.staged)
	}

	// Verified -> Promoted: the staged temp lives next to the final path,
	// so the rename is atomic.
	if err := os.Rename(j.staged, j.Output); err != nil {
		return StateFailed, fmt.Errorf("promote output: %w", err)
	}
	log.Debug().Str("output", j.Output).Str("size", display.FormatBytes(fi.Size())).Msg("promoted")
	return StatePromoted, nil
}

// RemoveArtifacts deletes temp files best-effort. Deletion problems are
// logged, never returned, so cleanup can't mask the failure that put the
// job here.
func RemoveArtifacts(log zerolog.Logger, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", p).Msg("could not remove temp artifact")
		}
	}
}
