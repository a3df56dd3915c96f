// Package naming derives every output, sibling, and temp path the pipeline
// uses from a source file path. Centralizing the rules keeps the sibling
// conventions (chapter XML/CSV next to the container) and the temp-name
// scheme (unique token per job) in one place.
package naming

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Token returns a fresh collision-resistant name component. Each job
// generates its own token so no two jobs ever share a temp path.
func Token() string {
	return uuid.NewString()[:8]
}

// stem returns the path without its extension.
func stem(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// MP4Output is the final converted-container path: the source with its
// extension replaced by .mp4.
func MP4Output(src string) string {
	return stem(src) + ".mp4"
}

// TempSibling builds a temp path in the same directory as path, so the
// final promotion rename never crosses a filesystem boundary:
// "<stem>.<token><suffix>".
func TempSibling(path, token, suffix string) string {
	return stem(path) + "." + token + suffix
}

// TempChapterText is the staging path for generated OGM chapter text.
func TempChapterText(src, token string) string {
	return TempSibling(src, token, ".tmpchapters.txt")
}

// ChapterXML is the editable chapter XML sibling of a container.
func ChapterXML(mkv string) string {
	return stem(mkv) + "_chapters.xml"
}

// ChapterCSV is the editable chapter record-set sibling of a container.
func ChapterCSV(mkv string) string {
	return stem(mkv) + "_chapters.csv"
}

// BookmarkSibling is the container path matching a bookmark file (same
// stem, .mkv extension).
func BookmarkSibling(pbf string) string {
	return stem(pbf) + ".mkv"
}

// SafeTitle converts a chapter title into a usable file name: path
// separators and characters reserved on common filesystems are replaced
// with underscores, surrounding whitespace is dropped.
func SafeTitle(title string) string {
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\x00':
			return '_'
		}
		return r
	}, title)
	replaced = strings.TrimSpace(replaced)
	if replaced == "" {
		return "_"
	}
	return replaced
}

// SplitOutput is the destination for one extracted chapter: a sibling MP4
// named after the chapter title.
func SplitOutput(src, title string) string {
	return filepath.Join(filepath.Dir(src), SafeTitle(title)+".mp4")
}
