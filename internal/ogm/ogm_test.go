package ogm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

func TestEncode(t *testing.T) {
	list := chapter.List{
		{Time: 0, Title: "ブックマーク 1"},
		{Time: 500, Title: "Intro"},
		{Time: 4500, Title: "Middle"},
	}

	want := "CHAPTER01=00:00:00.000\n" +
		"CHAPTER01NAME=ブックマーク 1\n" +
		"CHAPTER02=00:00:00.500\n" +
		"CHAPTER02NAME=Intro\n" +
		"CHAPTER03=00:00:04.500\n" +
		"CHAPTER03NAME=Middle\n"
	assert.Equal(t, want, Encode(list))
}

func TestDecode_DropsDefaultTitles(t *testing.T) {
	text := "CHAPTER01=00:00:00.000\n" +
		"CHAPTER01NAME=Chapter 01\n" +
		"CHAPTER02=00:01:30.500\n" +
		"CHAPTER02NAME=Intro\n"

	list := Decode(text)
	require.Len(t, list, 1)
	assert.Equal(t, chapter.Entry{Time: 90500, Title: "Intro"}, list[0])
}

func TestDecodeCues_PreservesSourceOrdinal(t *testing.T) {
	text := "CHAPTER01=00:00:00.000\n" +
		"CHAPTER01NAME=Chapter 01\n" +
		"CHAPTER02=00:01:30.500\n" +
		"CHAPTER02NAME=Opening\n" +
		"CHAPTER03=00:05:00.000\n" +
		"CHAPTER03NAME=ブックマーク 3\n" +
		"CHAPTER04=00:10:00.000\n" +
		"CHAPTER04NAME=Ending\n"

	cues := DecodeCues(text)
	require.Len(t, cues, 2)
	assert.Equal(t, Cue{Ordinal: 2, Time: 90500, Title: "Opening"}, cues[0])
	assert.Equal(t, Cue{Ordinal: 4, Time: 600000, Title: "Ending"}, cues[1])
}

func TestDecode_SkipsMalformedLines(t *testing.T) {
	text := "CHAPTER01=garbage\n" +
		"CHAPTER01NAME=Orphaned\n" +
		"random noise\n" +
		"CHAPTER02=00:00:10.000\n" +
		"CHAPTER02NAME=Kept\n"

	list := Decode(text)
	require.Len(t, list, 1)
	assert.Equal(t, "Kept", list[0].Title)
}

func TestDecode_NameWithoutTimeIgnored(t *testing.T) {
	assert.Empty(t, Decode("CHAPTER05NAME=No time line\n"))
}

func TestRoundTrip_PreservesClockText(t *testing.T) {
	// encode -> decode -> encode reproduces identical clock text for
	// millisecond-precision sources.
	list := chapter.List{
		{Time: 500, Title: "Intro"},
		{Time: 90500, Title: "Main"},
		{Time: timecode.FromMilliseconds(3723456, 0), Title: "Late"},
	}
	first := Encode(list)
	second := Encode(Decode(first))
	assert.Equal(t, first, second)
}
