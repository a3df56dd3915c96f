package chapxml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

const sampleXML = `<?xml version="1.0"?>
<!-- <!DOCTYPE Chapters SYSTEM "matroskachapters.dtd"> -->
<Chapters>
  <EditionEntry>
    <EditionFlagDefault>1</EditionFlagDefault>
    <ChapterAtom>
      <ChapterUID>1234</ChapterUID>
      <ChapterTimeStart>00:00:00.000000000</ChapterTimeStart>
      <ChapterDisplay>
        <ChapterString>Chapter 01</ChapterString>
        <ChapterLanguage>und</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
    <ChapterAtom>
      <ChapterUID>5678</ChapterUID>
      <ChapterTimeStart>00:01:30.500000000</ChapterTimeStart>
      <ChapterDisplay>
        <ChapterString>Old Title</ChapterString>
        <ChapterLanguage>und</ChapterLanguage>
      </ChapterDisplay>
    </ChapterAtom>
  </EditionEntry>
</Chapters>
`

func TestEntries(t *testing.T) {
	doc, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	list, err := doc.Entries()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, chapter.Entry{Time: 0, Title: "Chapter 01"}, list[0])
	assert.Equal(t, chapter.Entry{Time: 90500, Title: "Old Title"}, list[1])
}

func TestEntries_NoAtoms(t *testing.T) {
	doc, err := Parse([]byte(`<Chapters><EditionEntry/></Chapters>`))
	require.NoError(t, err)

	_, err = doc.Entries()
	assert.ErrorIs(t, err, ErrNoChapters)
}

func TestRows_KeepsRawClockText(t *testing.T) {
	doc, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	rows := doc.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, Row{TimeStart: "00:00:00.000000000", Title: "Chapter 01"}, rows[0])
	assert.Equal(t, Row{TimeStart: "00:01:30.500000000", Title: "Old Title"}, rows[1])
}

func TestRewriteTitles_MatchedAtomOnly(t *testing.T) {
	doc, err := Parse([]byte(sampleXML))
	require.NoError(t, err)

	n := doc.RewriteTitles(map[timecode.Key]string{
		timecode.KeyFromSeconds(90.500000): "New Title",
	})
	assert.Equal(t, 1, n)

	list, err := doc.Entries()
	require.NoError(t, err)
	assert.Equal(t, "Chapter 01", list[0].Title)
	assert.Equal(t, "New Title", list[1].Title)
}

func TestRewriteTitles_UnmatchedTreeByteIdentical(t *testing.T) {
	doc, err := Parse([]byte(sampleXML))
	require.NoError(t, err)
	before, err := doc.Bytes()
	require.NoError(t, err)

	// Key matches nothing: the serialized tree must not change at all.
	n := doc.RewriteTitles(map[timecode.Key]string{
		timecode.KeyFromSeconds(42.0): "Nope",
	})
	assert.Zero(t, n)

	after, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRewriteTitles_NestedAtoms(t *testing.T) {
	nested := `<Chapters><EditionEntry><ChapterAtom>
  <ChapterTimeStart>00:00:00.000000000</ChapterTimeStart>
  <ChapterDisplay><ChapterString>Outer</ChapterString></ChapterDisplay>
  <ChapterAtom>
    <ChapterTimeStart>00:00:05.000000000</ChapterTimeStart>
    <ChapterDisplay><ChapterString>Inner</ChapterString></ChapterDisplay>
  </ChapterAtom>
</ChapterAtom></EditionEntry></Chapters>`

	doc, err := Parse([]byte(nested))
	require.NoError(t, err)

	n := doc.RewriteTitles(map[timecode.Key]string{
		timecode.KeyFromSeconds(5): "Inner Renamed",
	})
	assert.Equal(t, 1, n)

	list, err := doc.Entries()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Inner Renamed", list[1].Title)
}
