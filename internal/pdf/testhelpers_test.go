package pdf

import (
	"bytes"

	"github.com/corewing/pdfnursery/internal/tape"
)

func newTape(data string) *tape.Tape {
	return tape.New(bytes.NewReader([]byte(data)), int64(len(data)))
}
