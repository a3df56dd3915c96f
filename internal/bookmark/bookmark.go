// Package bookmark decodes the player's proprietary bookmark files
// (line-oriented "N=ms*title*extra" records) into a chapter list.
package bookmark

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

// ErrUnreadableFile is returned when none of the candidate text encodings
// decodes the file without loss.
var ErrUnreadableFile = errors.New("bookmark file not readable in any supported encoding")

// DefaultOffsetMs shifts every bookmark earlier to compensate for operator
// reaction time when the marker was set during playback.
const DefaultOffsetMs = -500

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText tries the supported encodings in fixed priority order and
// returns the first lossless decode: UTF-8 (BOM tolerated), then Shift_JIS
// (cp932), then UTF-16 with BOM. Matches the encodings the bookmark tool
// writes on Windows.
func decodeText(data []byte) (string, error) {
	if trimmed, ok := bytes.CutPrefix(data, utf8BOM); ok {
		data = trimmed
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	if s, err := japanese.ShiftJIS.NewDecoder().Bytes(data); err == nil &&
		!bytes.ContainsRune(s, utf8.RuneError) {
		return string(s), nil
	}

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	if s, err := utf16.NewDecoder().Bytes(data); err == nil &&
		!bytes.ContainsRune(s, utf8.RuneError) {
		return string(s), nil
	}

	return "", ErrUnreadableFile
}

// Decode parses bookmark file content into a chapter list. offsetMs is a
// signed millisecond adjustment applied to every marker (clamped at zero).
// Lines that do not parse as a key=value pair with a '*'-delimited value
// are ignored; only a file with no decodable text at all is an error.
func Decode(data []byte, offsetMs int64) (chapter.List, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	var list chapter.List
	for text != "" {
		line := text
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			line, text = text[:i+1], text[i+1:]
		} else {
			text = ""
		}
		line = strings.TrimRight(line, "\r\n")
		if !strings.Contains(line, "=") || !strings.Contains(line, "*") {
			continue
		}
		_, value, _ := strings.Cut(strings.TrimSpace(line), "=")
		parts := strings.SplitN(value, "*", 3)
		if len(parts) < 2 {
			continue
		}
		ms, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}
		list = append(list, chapter.Entry{
			Time:  timecode.FromMilliseconds(ms, offsetMs),
			Title: strings.TrimSpace(parts[1]),
		})
	}
	return list, nil
}
