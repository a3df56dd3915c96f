package bookmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

func TestDecode_AppliesOffset(t *testing.T) {
	data := []byte("1=1000*Intro*\n2=5000*Middle*\n")

	list, err := Decode(data, -500)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, chapter.Entry{Time: 500, Title: "Intro"}, list[0])
	assert.Equal(t, chapter.Entry{Time: 4500, Title: "Middle"}, list[1])

	// First entry is above zero, so the lead-chapter rule adds one.
	withLead := list.EnsureLeadChapter()
	require.Len(t, withLead, 3)
	assert.Equal(t, timecode.Timestamp(0), withLead[0].Time)
	assert.Equal(t, chapter.DefaultFirstTitle, withLead[0].Title)
}

func TestDecode_ClampsToZero(t *testing.T) {
	list, err := Decode([]byte("1=300*Early*\n"), -500)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, timecode.Timestamp(0), list[0].Time)

	// Already covers time zero; the lead-chapter rule must not fire.
	assert.Len(t, list.EnsureLeadChapter(), 1)
}

func TestDecode_IgnoresJunkLines(t *testing.T) {
	data := []byte("[Bookmark]\nplaytime=123\n1=abc*Bad*\n2=2000*Good*extra*stuff\nnoequals\n")

	list, err := Decode(data, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, chapter.Entry{Time: 2000, Title: "Good"}, list[0])
}

func TestDecode_UTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("1=1000*Intro*\n")...)
	list, err := Decode(data, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Intro", list[0].Title)
}

func TestDecode_ShiftJIS(t *testing.T) {
	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte("1=1000*序章*\n"))
	require.NoError(t, err)

	list, err := Decode(sjis, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "序章", list[0].Title)
}

func TestDecode_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("1=1000*本編*\n"))
	require.NoError(t, err)

	list, err := Decode(data, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "本編", list[0].Title)
}

func TestDecode_UnreadableEncoding(t *testing.T) {
	// Lone continuation bytes: invalid UTF-8, invalid Shift_JIS lead bytes,
	// and no UTF-16 BOM.
	_, err := Decode([]byte{0x80, 0x80, 0x80, 0x81}, 0)
	assert.ErrorIs(t, err, ErrUnreadableFile)
}

func TestDecode_EmptyFile(t *testing.T) {
	list, err := Decode(nil, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
