// Package probe classifies media files by codec: one ffprobe call per
// stream type, checked against fixed allow-lists to decide whether a file
// can be container-copied or must be transcoded.
package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mkoizumi/chapmux/internal/tools"
)

// ErrUnprobeable marks a file whose video stream cannot be identified.
// Such files are skipped, not retried.
var ErrUnprobeable = errors.New("video codec cannot be probed")

// Decision is the copy-vs-transcode outcome.
type Decision int

const (
	DecisionCopy Decision = iota
	DecisionTranscode
)

func (d Decision) String() string {
	if d == DecisionCopy {
		return "copy"
	}
	return "transcode"
}

// Codecs that survive a plain container copy into MP4. Classification is
// purely a function of these names; resolution, bitrate, and container are
// never inspected.
var (
	copySafeVideo = map[string]bool{"h264": true, "hevc": true, "av1": true}
	copySafeAudio = map[string]bool{"aac": true, "mp3": true}
)

// Classification is the per-file probe result.
type Classification struct {
	VideoCodec string
	AudioCodec string
	Decision   Decision
}

// codecName probes one stream's codec token. Non-zero exit or empty output
// both mean "unknown" rather than an error; a missing audio stream is
// normal for some sources.
func codecName(ctx context.Context, r tools.Runner, path, streamSel string) string {
	res := r.Run(ctx, tools.ProbeCodecArgs(path, streamSel))
	if res.Err != nil {
		return "unknown"
	}
	token := strings.TrimSpace(res.Stdout)
	if token == "" {
		return "unknown"
	}
	return token
}

// Classify probes the first video and audio stream of path and decides
// copy vs transcode. An unknown video codec fails with ErrUnprobeable.
func Classify(ctx context.Context, r tools.Runner, path string) (Classification, error) {
	video := codecName(ctx, r, path, "v:0")
	if video == "unknown" {
		return Classification{}, fmt.Errorf("%w: %s", ErrUnprobeable, path)
	}

	c := Classification{
		VideoCodec: video,
		AudioCodec: codecName(ctx, r, path, "a:0"),
		Decision:   DecisionTranscode,
	}
	if copySafeVideo[c.VideoCodec] && copySafeAudio[c.AudioCodec] {
		c.Decision = DecisionCopy
	}
	return c, nil
}

// HasVideoStream reports whether path has an identifiable video stream.
// Used to include explicitly named files whose extension alone is
// ambiguous.
func HasVideoStream(ctx context.Context, r tools.Runner, path string) bool {
	return codecName(ctx, r, path, "v:0") != "unknown"
}
