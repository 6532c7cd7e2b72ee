package pdf

import (
	"fmt"

	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// Header is the parsed "%PDF-M.N" version prefix.
type Header struct {
	Major int
	Minor int
}

// ParseHeader reads the literal "%PDF-M.N" prefix from the first 8 bytes
// of t (any single-digit M.N is accepted, which covers 1.0 through 1.7). t's position and
// direction are not assumed; ParseHeader seeks
// to 0 itself.
func ParseHeader(t *tape.Tape) (Header, error) {
	t.Top()
	buf, err := t.Get(8)
	if err != nil {
		return Header{}, err
	}
	if len(buf) < 8 {
		return Header{}, pdferr.New(pdferr.KindParseError, "header", "file shorter than 8 bytes")
	}
	if string(buf[:5]) != "%PDF-" {
		return Header{}, pdferr.New(pdferr.KindParseError, "header", fmt.Sprintf("missing %%PDF- prefix, got %q", buf[:5]))
	}
	if buf[6] != '.' || !isDigit(buf[5]) || !isDigit(buf[7]) {
		return Header{}, pdferr.New(pdferr.KindParseError, "header", fmt.Sprintf("malformed version %q", buf[5:8]))
	}
	return Header{Major: int(buf[5] - '0'), Minor: int(buf[7] - '0')}, nil
}
