package tools

import (
	"fmt"
	"strconv"
)

// ProbeCodecArgs queries the codec name of one stream ("v:0" or "a:0") as a
// bare token on stdout.
func ProbeCodecArgs(path, streamSel string) Invocation {
	return Invocation{
		Stage: "probe " + streamSel,
		Argv: []string{FFprobe,
			"-v", "error",
			"-select_streams", streamSel,
			"-show_entries", "stream=codec_name",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		},
	}
}

// CopyArgs remuxes a file into an MP4 container without re-encoding.
func CopyArgs(in, out string) Invocation {
	return Invocation{
		Stage: "copy",
		Argv: []string{FFmpeg,
			"-hide_banner", "-y",
			"-i", in,
			"-c", "copy",
			out,
		},
	}
}

// EncodeArgs re-encodes a file to 10-bit AV1 MP4 via HandBrake.
func EncodeArgs(in, out string, quality int, preset string) Invocation {
	return Invocation{
		Stage: "encode",
		Argv: []string{HandBrake,
			"--force",
			"--input", in,
			"--output", out,
			"--format", "av_mp4",
			"--optimize",
			"--align-av",
			"--markers",
			"--encoder", "nvenc_av1_10bit",
			"--encoder-preset", preset,
			"--quality", strconv.Itoa(quality),
			"--aencoder", "aac",
			"--ab", "128",
			"--mixdown", "stereo",
		},
	}
}

// StripMetadataArgs drops container metadata and moves the moov atom to the
// front for streaming-friendly output.
func StripMetadataArgs(in, out string) Invocation {
	return Invocation{
		Stage: "strip metadata",
		Argv: []string{FFmpeg,
			"-hide_banner",
			"-i", in,
			"-map_metadata", "-1",
			"-c", "copy",
			"-movflags", "+faststart",
			out,
		},
	}
}

// ExtractChapterArgs encodes a single chapter of a container to MP4 via
// HandBrake, video-only settings matched to the recording workflow.
func ExtractChapterArgs(in, out string, chapterNum int) Invocation {
	ch := strconv.Itoa(chapterNum)
	return Invocation{
		Stage: "extract chapter " + ch,
		Argv: []string{HandBrake,
			"--force",
			"--input", in,
			"--output", out,
			"--format", "av_mp4",
			"--optimize",
			"--align-av",
			"--chapters", ch + "-" + ch,
			"--encoder", "nvenc_h265_10bit",
			"--encoder-preset", "slowest",
			"--vb", "6000",
			"--cfr",
			"--first-audio",
			"--aencoder", "flac24",
			"--width", "1920",
			"--height", "1080",
			"--crop-mode", "none",
			"--non-anamorphic",
			"--colorspace", "bt709",
			"--subtitle", "none",
		},
	}
}

// LoudnormArgs normalizes audio loudness to EBU R128 targets while copying
// video, mirroring the recording workflow's normalization pass.
func LoudnormArgs(in, out string) Invocation {
	return Invocation{
		Stage: "normalize audio",
		Argv: []string{FFmpeg,
			"-hide_banner", "-y",
			"-i", in,
			"-af", "loudnorm=I=-5:LRA=7:TP=0",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "128k",
			"-sn",
			"-movflags", "+faststart",
			out,
		},
	}
}

// ExtractChaptersXMLArgs writes a container's chapters as XML to out.
// mkvextract exits zero but writes nothing when the container has no
// chapters; callers must treat an absent output file as "no chapters".
func ExtractChaptersXMLArgs(mkv, out string) Invocation {
	return Invocation{
		Stage: "extract chapters",
		Argv:  []string{Mkvextract, mkv, "chapters", out},
	}
}

// ExtractChaptersOGMArgs prints a container's chapters as OGM text on
// stdout ("simple" format).
func ExtractChaptersOGMArgs(mkv string) Invocation {
	return Invocation{
		Stage: "extract chapters",
		Argv:  []string{Mkvextract, mkv, "chapters", "-s"},
	}
}

// WriteChaptersArgs replaces a container's chapters in place from a chapter
// file (OGM text or XML, detected by mkvpropedit).
func WriteChaptersArgs(mkv, chapterFile string) Invocation {
	return Invocation{
		Stage: "write chapters",
		Argv:  []string{Mkvpropedit, mkv, "--chapters", chapterFile},
	}
}

// String renders an invocation for log output.
func (inv Invocation) String() string {
	return fmt.Sprintf("%v", inv.Argv)
}
