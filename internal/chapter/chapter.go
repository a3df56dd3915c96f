// Package chapter holds the in-memory chapter model shared by every codec:
// an ordered list of (timestamp, title) entries plus the rules for synthetic
// lead chapters and auto-generated default titles.
package chapter

import (
	"regexp"

	"github.com/mkoizumi/chapmux/internal/timecode"
)

// DefaultFirstTitle is the label given to the synthetic chapter inserted at
// time zero. It matches the bookmark tool's own default label so downstream
// consumers recognize it as machine-generated.
const DefaultFirstTitle = "ブックマーク 1"

// Entry is a single chapter marker. Ordinals are derived from list position
// at serialization time and never stored, so the two cannot drift apart.
type Entry struct {
	Time  timecode.Timestamp
	Title string
}

// List is an ordered sequence of chapter entries. Entries keep the
// non-decreasing source order; the engine never re-sorts because source
// order encodes intent.
type List []Entry

// EnsureLeadChapter inserts a synthetic zero-time entry when the first
// entry starts after zero, so the file always has a chapter covering time
// zero. Idempotent: a list whose first entry is already at zero is returned
// unchanged.
func (l List) EnsureLeadChapter() List {
	if len(l) == 0 || l[0].Time == 0 {
		return l
	}
	out := make(List, 0, len(l)+1)
	out = append(out, Entry{Time: 0, Title: DefaultFirstTitle})
	return append(out, l...)
}

// Default-title conventions observed in upstream tools: mkvextract's
// "Chapter NN" and the bookmark tool's "ブックマーク N".
var defaultTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Chapter \d{2}$`),
	regexp.MustCompile(`^ブックマーク \d+$`),
}

// IsDefaultTitle reports whether a title matches a recognized
// auto-generated pattern and therefore carries no user intent. Consuming
// codecs decide whether such entries are kept, dropped, or overridden.
func IsDefaultTitle(title string) bool {
	for _, p := range defaultTitlePatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}
