// Package timecode is the canonical time representation shared by every
// chapter format: millisecond offsets from media start, "HH:MM:SS.mmm"
// clock text, and the rounded sub-second keys used for reconciliation
// matching.
package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformedTimestamp is returned when clock text contains non-numeric
// or structurally invalid components.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// Timestamp is a count of whole milliseconds since the start of the media.
// Always >= 0.
type Timestamp int64

// FromMilliseconds builds a Timestamp from a raw millisecond offset plus a
// signed adjustment, clamped so the result is never negative.
func FromMilliseconds(ms, offsetMs int64) Timestamp {
	adjusted := ms + offsetMs
	if adjusted < 0 {
		adjusted = 0
	}
	return Timestamp(adjusted)
}

// Milliseconds returns the raw millisecond value.
func (t Timestamp) Milliseconds() int64 { return int64(t) }

// Seconds returns the timestamp as fractional seconds.
func (t Timestamp) Seconds() float64 { return float64(t) / 1000 }

// Clock renders the timestamp as "HH:MM:SS.mmm" by integer decomposition.
// No rounding occurs beyond the millisecond precision already stored.
func (t Timestamp) Clock() string {
	ms := int64(t)
	h := ms / 3600000
	ms -= h * 3600000
	m := ms / 60000
	ms -= m * 60000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}

// keyDigits is the sub-second precision (decimal digits of a second) that
// defines timestamp equality for reconciliation. Matroska chapter XML stores
// nanosecond fractions while edited record sets carry float seconds, so both
// sides are rounded to this precision before comparison.
const keyDigits = 6

// Key is a timestamp rounded to 6 decimal digits of a second, stored as
// whole microseconds. Two timestamps are considered equal for
// reconciliation purposes when their Keys are equal.
type Key int64

// KeyFromSeconds rounds fractional seconds to the key precision.
func KeyFromSeconds(sec float64) Key {
	return Key(math.Round(sec * math.Pow10(keyDigits)))
}

// Key returns the reconciliation key for the timestamp.
func (t Timestamp) Key() Key {
	return KeyFromSeconds(t.Seconds())
}

// ParseClock parses "H:MM:SS" clock text with an optional fractional-second
// part of 1 to 9 digits (Matroska emits nanoseconds) into a Timestamp.
// The fraction is rounded to 6 decimal digits of a second before the value
// is converted to whole milliseconds.
func ParseClock(text string) (Timestamp, error) {
	sec, err := clockSeconds(text)
	if err != nil {
		return 0, err
	}
	return Timestamp(math.Round(sec * 1000)), nil
}

// ParseClockKey parses clock text directly into a reconciliation Key,
// preserving sub-millisecond precision that a Timestamp would truncate.
func ParseClockKey(text string) (Key, error) {
	sec, err := clockSeconds(text)
	if err != nil {
		return 0, err
	}
	return KeyFromSeconds(sec), nil
}

func clockSeconds(text string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTimestamp, text)
	}

	h, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad hours in %q", ErrMalformedTimestamp, text)
	}
	m, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil || m > 59 {
		return 0, fmt.Errorf("%w: bad minutes in %q", ErrMalformedTimestamp, text)
	}

	secPart := parts[2]
	frac := 0.0
	if dot := strings.IndexByte(secPart, '.'); dot >= 0 {
		fracText := secPart[dot+1:]
		secPart = secPart[:dot]
		if len(fracText) == 0 || len(fracText) > 9 {
			return 0, fmt.Errorf("%w: bad fraction in %q", ErrMalformedTimestamp, text)
		}
		n, err := strconv.ParseUint(fracText, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad fraction in %q", ErrMalformedTimestamp, text)
		}
		frac = float64(n) / math.Pow10(len(fracText))
	}

	s, err := strconv.ParseUint(secPart, 10, 32)
	if err != nil || s > 59 {
		return 0, fmt.Errorf("%w: bad seconds in %q", ErrMalformedTimestamp, text)
	}

	sec := float64(h)*3600 + float64(m)*60 + float64(s) + frac
	// Round to the key precision first so ParseClock and ParseClockKey agree
	// on values that sit exactly on a rounding boundary.
	return math.Round(sec*math.Pow10(keyDigits)) / math.Pow10(keyDigits), nil
}
