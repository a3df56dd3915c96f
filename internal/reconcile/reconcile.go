// Package reconcile re-applies externally edited chapter titles to a
// chapter XML tree, keyed by rounded start time.
package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mkoizumi/chapmux/internal/timecode"
)

// ErrNoRecords is returned when the record set is empty, unreadable, or has
// an unrecognized header. Partially matching record sets are not an error:
// the container's chapter count may legitimately differ from the edited set.
var ErrNoRecords = errors.New("no usable chapter records")

// ParseRecords reads an edited CSV record set into a rounded-timestamp →
// title map. Two header schemas are accepted:
//
//	TimeStart,ChapterName — clock-text start times as exported by the
//	                        extract step
//	start,title           — fractional-second start times from the older
//	                        spreadsheet layout; titles may carry a
//	                        "YYMMDD_" prefix which is stripped
func ParseRecords(r io.Reader) (map[timecode.Key]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoRecords, err)
	}

	var keyFor func(string) (timecode.Key, error)
	var mapTitle func(string) string
	switch {
	case len(header) >= 2 && header[0] == "TimeStart" && header[1] == "ChapterName":
		keyFor = timecode.ParseClockKey
		mapTitle = func(s string) string { return s }
	case len(header) >= 2 && header[0] == "start" && header[1] == "title":
		keyFor = keyFromSeconds
		mapTitle = stripDatePrefix
	default:
		return nil, fmt.Errorf("%w: unrecognized header %v", ErrNoRecords, header)
	}

	titles := make(map[timecode.Key]string)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoRecords, err)
		}
		if len(rec) < 2 {
			continue
		}
		key, err := keyFor(rec[0])
		if err != nil {
			continue
		}
		titles[key] = mapTitle(rec[1])
	}

	if len(titles) == 0 {
		return nil, ErrNoRecords
	}
	return titles, nil
}

func keyFromSeconds(s string) (timecode.Key, error) {
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return timecode.KeyFromSeconds(sec), nil
}

// stripDatePrefix removes a leading "YYMMDD_" recording-date prefix from a
// title, a convention of the older spreadsheet layout.
func stripDatePrefix(title string) string {
	if len(title) > 7 && title[6] == '_' && allDigits(title[:6]) {
		return title[7:]
	}
	return title
}

func allDigits(s string) bool {
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
