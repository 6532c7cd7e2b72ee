package pdf

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// pdfBuilder assembles a minimal classical-xref PDF byte-for-byte, tracking
// each indirect object's offset as it is written so the xref subsection
// and trailer it appends are always self-consistent.
type pdfBuilder struct {
	buf     bytes.Buffer
	offsets map[int]int64
	size    int
}

func newPDFBuilder(header string) *pdfBuilder {
	b := &pdfBuilder{offsets: make(map[int]int64)}
	b.buf.WriteString(header)
	return b
}

func (b *pdfBuilder) object(num int, body string) {
	b.offsets[num] = int64(b.buf.Len())
	b.buf.WriteString(fmt.Sprintf("%d 0 obj\n%s\nendobj\n", num, body))
	if num+1 > b.size {
		b.size = num + 1
	}
}

// finish appends the xref table, trailer, and startxref footer, and
// returns the whole byte slice.
func (b *pdfBuilder) finish(trailerExtra string) []byte {
	xrefOffset := int64(b.buf.Len())
	b.buf.WriteString(fmt.Sprintf("xref\n0 %d\n", b.size))
	b.buf.WriteString("0000000000 65535 f \n")
	for i := 1; i < b.size; i++ {
		off, ok := b.offsets[i]
		if !ok {
			b.buf.WriteString("0000000000 00000 f \n")
			continue
		}
		b.buf.WriteString(fmt.Sprintf("%010d 00000 n \n", off))
	}
	b.buf.WriteString(fmt.Sprintf("trailer\n<< /Size %d %s >>\n", b.size, trailerExtra))
	b.buf.WriteString(fmt.Sprintf("startxref\n%d\n%%%%EOF", xrefOffset))
	return b.buf.Bytes()
}

func buildMinimalPDF() []byte {
	b := newPDFBuilder("%PDF-1.4\n")
	b.object(1, "<< /Type /Catalog /Pages 2 0 R >>")
	b.object(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	b.object(3, "<< /Type /Page /MediaBox [0 0 200 300] >>")
	b.object(4, "<< /Title (Test) >>")
	b.object(5, "6 0 R")
	b.object(6, "<< /Type /X >>")
	return b.finish("/Root 1 0 R /Info 4 0 R")
}

func tapeFromBytes(data []byte) *tape.Tape {
	return tape.New(bytes.NewReader(data), int64(len(data)))
}

func TestLocateStartXRefAndParse(t *testing.T) {
	data := buildMinimalPDF()
	tp := tapeFromBytes(data)

	offset, err := LocateStartXRef(tp)
	require.NoError(t, err)

	xref, err := ParseXRef(tp, offset)
	require.NoError(t, err)

	root, ok := xref.Trailer["Root"]
	require.True(t, ok)
	assert.Equal(t, object.Reference{Index: 1, Generation: 0}, root)

	entry, ok := xref.Entries[object.Reference{Index: 6, Generation: 0}]
	require.True(t, ok)
	assert.True(t, entry.InUse)
}

func TestLocateStartXRefMissingFails(t *testing.T) {
	data := buildMinimalPDF()
	truncated := data[:len(data)-32]
	tp := tapeFromBytes(truncated)

	_, err := LocateStartXRef(tp)
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindXRefNotFound))
}

func TestXRefStreamRejected(t *testing.T) {
	data := []byte("%PDF-1.5\n90 0 obj\n<< /Type /XRef >>\nendobj\nstartxref\n9\n%%EOF")
	tp := tapeFromBytes(data)
	offset, err := LocateStartXRef(tp)
	require.NoError(t, err)

	_, err = ParseXRef(tp, offset)
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindXRefMalformed))
}

func TestXRefEntryStatusByteCorruption(t *testing.T) {
	data := buildMinimalPDF()
	corrupted := append([]byte(nil), data...)
	idx := bytes.Index(corrupted, []byte("xref\n"))
	require.True(t, idx >= 0)
	// Flip object 1's status byte 'n' -> 'x' (the entry after the free entry 0).
	entryStart := idx + len("xref\n0 7\n") + len("0000000000 65535 f \n")
	statusPos := entryStart + 17
	corrupted[statusPos] = 'x'

	tp := tapeFromBytes(corrupted)
	offset, err := LocateStartXRef(tp)
	require.NoError(t, err)
	_, err = ParseXRef(tp, offset)
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindXRefMalformed))
}
