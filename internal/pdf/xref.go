package pdf

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/corewing/pdfnursery/internal/logging"
	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// TableEntry is one xref slot: where an object lives, and whether it is
// currently in use.
type TableEntry struct {
	Offset     uint64
	Generation uint32
	InUse      bool
}

// XRef is the parsed cross-reference table plus its trailer dictionary.
type XRef struct {
	Entries map[object.Reference]TableEntry
	Trailer object.Dictionary
}

const tailWindow = 1024

// LocateStartXRef tail-scans the last tailWindow bytes of t for the last
// "startxref" marker and returns the absolute offset on the following
// line.
func LocateStartXRef(t *tape.Tape) (int64, error) {
	t.Bottom()
	window := tailWindow
	if t.Size() < int64(window) {
		window = int(t.Size())
	}
	buf, err := t.Peek(window)
	if err != nil {
		return 0, err
	}

	idx := bytes.LastIndex(buf, []byte("startxref"))
	if idx == -1 {
		return 0, pdferr.New(pdferr.KindXRefNotFound, "tail-scan", "no startxref marker in tail window")
	}

	rest := strings.TrimLeft(string(buf[idx+len("startxref"):]), " \t\r\n\x00\f")
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, pdferr.New(pdferr.KindXRefMalformed, "tail-scan", "startxref not followed by an offset")
	}
	offset, convErr := strconv.ParseInt(rest[:end], 10, 64)
	if convErr != nil {
		return 0, pdferr.Wrap(convErr, pdferr.KindXRefMalformed, "tail-scan", "invalid startxref offset")
	}
	return offset, nil
}

// ParseXRef seeks to offset, sets Forward, and parses a classical xref
// table and its trailer dictionary. A startxref offset that points at an
// indirect object (the PDF 1.5+ xref-stream shape) is rejected; this
// parser supports classical xref tables only.
func ParseXRef(t *tape.Tape, offset int64) (*XRef, error) {
	if err := t.Seek(offset); err != nil {
		return nil, err
	}
	t.SetForward()
	l := NewLexer(t)

	if err := l.skipWhitespace(); err != nil {
		return nil, err
	}
	b, ok, err := l.peekByte()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pdferr.New(pdferr.KindXRefMalformed, "xref", "empty input at xref offset")
	}
	if isDigit(b) {
		return nil, pdferr.New(pdferr.KindXRefMalformed, "xref", "not a classical xref (looks like an xref stream)")
	}
	if err := l.expectKeyword("xref"); err != nil {
		return nil, pdferr.Wrap(err, pdferr.KindXRefMalformed, "xref", "expected 'xref' keyword")
	}

	xref := &XRef{Entries: make(map[object.Reference]TableEntry)}

	for {
		if err := l.skipWhitespace(); err != nil {
			return nil, err
		}
		peek, err := t.Peek(7)
		if err != nil {
			return nil, err
		}
		if len(peek) >= 7 && string(peek) == "trailer" {
			t.Get(7)
			break
		}

		first, err := l.readUnsignedInt()
		if err != nil {
			return nil, pdferr.Wrap(err, pdferr.KindXRefMalformed, "xref-subsection", "expected start object number")
		}
		count, err := l.readUnsignedInt()
		if err != nil {
			return nil, pdferr.Wrap(err, pdferr.KindXRefMalformed, "xref-subsection", "expected entry count")
		}

		if err := l.skipWhitespace(); err != nil {
			return nil, err
		}
		for i := int64(0); i < count; i++ {
			line, err := t.Get(20)
			if err != nil {
				return nil, err
			}
			if len(line) < 20 {
				return nil, pdferr.New(pdferr.KindXRefMalformed, "xref-entry", "truncated 20-byte entry")
			}
			entry, parseErr := parseXRefLine(line)
			if parseErr != nil {
				logging.L().Debugw("xref entry malformed, status byte unrecognized", "object", first+i, "error", parseErr)
				return nil, parseErr
			}
			ref := object.Reference{Index: uint32(first + i), Generation: entry.Generation}
			xref.Entries[ref] = entry
		}
	}

	trailerObj, err := l.ReadObject()
	if err != nil {
		return nil, pdferr.Wrap(err, pdferr.KindXRefMalformed, "trailer", "failed to parse trailer dictionary")
	}
	trailer, ok := object.AsDictionary(trailerObj)
	if !ok {
		return nil, pdferr.New(pdferr.KindXRefMalformed, "trailer", "trailer is not a dictionary")
	}
	xref.Trailer = trailer

	logging.L().Debugw("xref parsed", "entries", len(xref.Entries))
	return xref, nil
}

// parseXRefLine decodes one fixed-width 20-byte entry:
// "NNNNNNNNNN GGGGG f|n\r\n" (or trailing "\n").
func parseXRefLine(line []byte) (TableEntry, error) {
	offsetStr := strings.TrimSpace(string(line[0:10]))
	genStr := strings.TrimSpace(string(line[11:16]))
	status := line[17]

	offset, err := strconv.ParseUint(offsetStr, 10, 64)
	if err != nil {
		return TableEntry{}, pdferr.Wrap(err, pdferr.KindXRefMalformed, "xref-entry", "invalid offset field")
	}
	gen, err := strconv.ParseUint(genStr, 10, 32)
	if err != nil {
		return TableEntry{}, pdferr.Wrap(err, pdferr.KindXRefMalformed, "xref-entry", "invalid generation field")
	}

	var inUse bool
	switch status {
	case 'n':
		inUse = true
	case 'f':
		inUse = false
	default:
		return TableEntry{}, pdferr.New(pdferr.KindXRefMalformed, "xref-entry", "status byte is neither 'n' nor 'f'")
	}

	return TableEntry{Offset: offset, Generation: uint32(gen), InUse: inUse}, nil
}
