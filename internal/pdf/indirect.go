package pdf

import (
	"fmt"

	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// IndirectObject is one "N G obj <object> endobj" body read off the tape.
type IndirectObject struct {
	Index      uint32
	Generation uint32
	Body       object.Object
}

// ParseIndirectObjectAt seeks t to offset, sets Forward direction, and
// parses exactly one "N G obj ... endobj" body, the shape every in-use
// xref entry's offset must point at.
func ParseIndirectObjectAt(t *tape.Tape, offset int64) (IndirectObject, error) {
	if err := t.Seek(offset); err != nil {
		return IndirectObject{}, err
	}
	t.SetForward()
	return parseIndirectObject(t)
}

func parseIndirectObject(t *tape.Tape) (IndirectObject, error) {
	l := NewLexer(t)

	num, err := l.readUnsignedInt()
	if err != nil {
		return IndirectObject{}, err
	}
	gen, err := l.readUnsignedInt()
	if err != nil {
		return IndirectObject{}, err
	}
	if err := l.expectKeyword("obj"); err != nil {
		return IndirectObject{}, err
	}

	body, err := l.ReadObject()
	if err != nil {
		return IndirectObject{}, err
	}

	if err := l.skipWhitespace(); err != nil {
		return IndirectObject{}, err
	}
	peek, err := t.Peek(6)
	if err == nil && string(peek) == "endobj" {
		t.Get(6)
	}
	// A missing "endobj" is tolerated: the body has already been fully
	// parsed, and some malformed-but-usable PDFs omit or misplace it.

	return IndirectObject{
		Index:      uint32(num),
		Generation: uint32(gen),
		Body:       body,
	}, nil
}

// StreamLength resolves a stream's /Length, chasing an indirect reference
// through resolve if necessary, since Length may
// itself be a reference.
func StreamLength(dict object.Dictionary, resolve func(object.Reference) (object.Object, error)) (int64, error) {
	v, ok := object.DictKey(dict, "Length")
	if !ok {
		return 0, pdferr.New(pdferr.KindParseError, "stream", "missing /Length")
	}
	if ref, ok := object.AsReference(v); ok {
		resolved, err := resolve(ref)
		if err != nil {
			return 0, err
		}
		v = resolved
	}
	n, ok := object.AsInteger(v)
	if !ok {
		return 0, pdferr.New(pdferr.KindParseError, "stream", fmt.Sprintf("/Length is not an integer: %v", v))
	}
	return n, nil
}
