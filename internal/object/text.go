package object

import (
	"golang.org/x/text/encoding/unicode"
)

// utf16BOM is the byte-order mark PDF 32000-1 §7.9.2.2 specifies for
// UTF-16BE text strings (as opposed to PDFDocEncoding, which has none).
var utf16BOM = []byte{0xFE, 0xFF}

// Text decodes b as a PDF text string: UTF-16BE (with its required BOM)
// when the BOM is present, PDFDocEncoding otherwise. This package does not
// implement the full PDFDocEncoding glyph table (it is a superset of
// Latin-1 for the ASCII range used by Info dictionary values in
// practice); every byte maps to the Latin-1 code point of the same value, which is
// lossy only for the handful of PDFDocEncoding code points above 0x7F
// that differ from Latin-1, acceptable for the Info-dictionary display
// use this method exists for.
func (b Bytes) Text() string {
	if len(b) >= 2 && b[0] == utf16BOM[0] && b[1] == utf16BOM[1] {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(b)
		if err == nil {
			return string(out)
		}
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
