// Package chapxml reads and selectively rewrites Matroska chapter XML.
//
// Only two pieces of the tree are ever touched: the ChapterTimeStart text of
// each ChapterAtom (read) and the ChapterDisplay/ChapterString text (read
// and, during reconciliation, written). Every other node — attributes,
// editions, languages, unrelated siblings, whitespace — passes through
// byte-identical, which is why the document is held as an etree tree rather
// than unmarshalled structs.
package chapxml

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"

	"github.com/mkoizumi/chapmux/internal/chapter"
	"github.com/mkoizumi/chapmux/internal/timecode"
)

// ErrNoChapters is returned when a parsed document contains no ChapterAtom
// nodes at all.
var ErrNoChapters = errors.New("no chapter atoms in document")

// Document wraps a parsed chapter XML tree.
type Document struct {
	tree *etree.Document
}

// Parse reads chapter XML into a Document.
func Parse(data []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse chapter XML: %w", err)
	}
	return &Document{tree: tree}, nil
}

// ParseFile reads chapter XML from disk.
func ParseFile(path string) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parse chapter XML %s: %w", path, err)
	}
	return &Document{tree: tree}, nil
}

// Bytes serializes the document. Unmodified nodes round-trip unchanged.
func (d *Document) Bytes() ([]byte, error) {
	return d.tree.WriteToBytes()
}

// atoms returns every ChapterAtom in document order, nested ones included.
func (d *Document) atoms() []*etree.Element {
	return d.tree.FindElements("//ChapterAtom")
}

// Entries extracts (timestamp, title) pairs in document order. Atoms
// missing a time or title node are skipped.
func (d *Document) Entries() (chapter.List, error) {
	atoms := d.atoms()
	if len(atoms) == 0 {
		return nil, ErrNoChapters
	}

	var list chapter.List
	for _, atom := range atoms {
		start := atom.FindElement("ChapterTimeStart")
		title := atom.FindElement("ChapterDisplay/ChapterString")
		if start == nil || title == nil {
			continue
		}
		ts, err := timecode.ParseClock(start.Text())
		if err != nil {
			return nil, err
		}
		list = append(list, chapter.Entry{Time: ts, Title: title.Text()})
	}
	return list, nil
}

// Row is one raw (clock text, title) pair for the editable record set.
// The clock text is kept verbatim so a later reconciliation pass computes
// keys from exactly what the container reported.
type Row struct {
	TimeStart string
	Title     string
}

// Rows lists the raw time/title pairs in document order.
func (d *Document) Rows() []Row {
	var rows []Row
	for _, atom := range d.atoms() {
		start := atom.FindElement("ChapterTimeStart")
		title := atom.FindElement("ChapterDisplay/ChapterString")
		if start == nil || title == nil {
			continue
		}
		rows = append(rows, Row{TimeStart: start.Text(), Title: title.Text()})
	}
	return rows
}

// RewriteTitles overwrites the ChapterString text of every atom whose
// rounded start time appears in titles, and returns how many atoms were
// rewritten. Atoms with no matching key — or with unparseable start times —
// are left untouched.
func (d *Document) RewriteTitles(titles map[timecode.Key]string) int {
	rewritten := 0
	for _, atom := range d.atoms() {
		start := atom.FindElement("ChapterTimeStart")
		title := atom.FindElement("ChapterDisplay/ChapterString")
		if start == nil || title == nil {
			continue
		}
		key, err := timecode.ParseClockKey(start.Text())
		if err != nil {
			continue
		}
		want, ok := titles[key]
		if !ok {
			continue
		}
		if title.Text() != want {
			title.SetText(want)
		}
		rewritten++
	}
	return rewritten
}
