// Package ogm reads and writes the OGM chapter text format: alternating
// "CHAPTERnn=HH:MM:SS.mmm" and "CHAPTERnnNAME=title" line pairs.
package ogm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

// Encode renders the list as OGM chapter text with 1-based, zero-padded
// ordinals in list order. Ordinals are derived from position here and
// nowhere else.
func Encode(list chapter.List) string {
	var b strings.Builder
	for i, e := range list {
		fmt.Fprintf(&b, "CHAPTER%02d=%s\n", i+1, e.Time.Clock())
		fmt.Fprintf(&b, "CHAPTER%02dNAME=%s\n", i+1, e.Title)
	}
	return b.String()
}

// Cue is one decoded OGM pair with its source ordinal preserved. The
// ordinal is the chapter number inside the container, which the splitting
// pipeline needs for per-chapter extraction even after default-titled
// neighbours are dropped.
type Cue struct {
	Ordinal int
	Time    timecode.Timestamp
	Title   string
}

// DecodeCues parses OGM chapter text. A time line sets the current ordinal
// and timestamp; the following NAME line commits the cue. Entries whose
// title matches a default pattern are treated as noise and dropped.
// Malformed lines are skipped.
func DecodeCues(text string) []Cue {
	var cues []Cue
	ordinal := -1
	var ts timecode.Timestamp

	for text != "" {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i+1], text[i+1:]
		} else {
			text = ""
		}
		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "CHAPTER") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		if name, isName := strings.CutSuffix(key, "NAME"); isName {
			n, err := strconv.Atoi(name[len("CHAPTER"):])
			if err != nil || n != ordinal {
				continue
			}
			if chapter.IsDefaultTitle(value) {
				continue
			}
			cues = append(cues, Cue{Ordinal: ordinal, Time: ts, Title: value})
			continue
		}

		n, err := strconv.Atoi(key[len("CHAPTER"):])
		if err != nil {
			continue
		}
		t, err := timecode.ParseClock(value)
		if err != nil {
			ordinal = -1
			continue
		}
		ordinal, ts = n, t
	}
	return cues
}

// Decode parses OGM chapter text into a chapter list, dropping
// default-titled entries like [DecodeCues].
func Decode(text string) chapter.List {
	cues := DecodeCues(text)
	list := make(chapter.List, 0, len(cues))
	for _, c := range cues {
		list = append(list, chapter.Entry{Time: c.Time, Title: c.Title})
	}
	return list
}
