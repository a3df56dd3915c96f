// Package tools runs the external programs the pipeline drives (ffmpeg,
// ffprobe, HandBrakeCLI, mkvextract, mkvpropedit): argument construction,
// execution with stderr capture, and startup dependency checks.
package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Tool names looked up on PATH.
const (
	FFmpeg      = "ffmpeg"
	FFprobe     = "ffprobe"
	HandBrake   = "HandBrakeCLI"
	Mkvextract  = "mkvextract"
	Mkvpropedit = "mkvpropedit"
)

// ErrToolNotFound is wrapped with the missing tool name by [CheckDeps].
var ErrToolNotFound = errors.New("required tool not found on PATH")

// Invocation is one external-tool run inside a pipeline stage. Argv[0] is
// the tool name; Stage is a short label carried into diagnostics.
type Invocation struct {
	Stage string
	Argv  []string
}

// Result holds the outcome of a single tool run. Stderr is always captured
// for diagnostics; Stdout only matters for query-style tools.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Runner abstracts subprocess execution so pipeline logic is testable
// without the real binaries installed.
type Runner interface {
	Run(ctx context.Context, inv Invocation) Result
}

// ExecRunner runs invocations via os/exec with captured output.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, inv Invocation) Result {
	cmd := exec.CommandContext(ctx, inv.Argv[0], inv.Argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	return res
}

// ToolError reports a stage whose tool exited non-zero, carrying the
// captured standard error for the user.
type ToolError struct {
	Stage    string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s failed (exit %d)", e.Stage, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLines(s, 5)
	}
	return msg
}

// lastLines keeps the tail of captured stderr, where ffmpeg-family tools
// put the actual failure reason.
func lastLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// CheckDeps verifies that every named tool is present on PATH. All missing
// tools are reported at once so the user fixes their environment in one
// pass. Called before dispatch; a failed check aborts the batch before it
// starts.
func CheckDeps(names ...string) error {
	var errs []error
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrToolNotFound, name))
		}
	}
	return errors.Join(errs...)
}

// Version returns the first line a tool prints for --version style queries,
// or "" when the tool cannot be queried.
func Version(ctx context.Context, r Runner, argv ...string) string {
	res := r.Run(ctx, Invocation{Stage: "version", Argv: argv})
	if res.Err != nil {
		return ""
	}
	out := strings.TrimSpace(res.Stdout)
	if idx := strings.IndexByte(out, '\n'); idx > 0 {
		out = out[:idx]
	}
	return out
}
