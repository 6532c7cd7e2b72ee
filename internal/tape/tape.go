// Package tape implements the random-access "tape" over a seekable byte
// source: a stateful, directional window with a small request/response
// vocabulary (Top, Bottom, GetSeek, Seek, GetForward, Get, Peek, Discard).
//
// Tape owns its own Position and Direction. In Forward direction, Get
// returns the next k bytes starting at Position and advances forward. In
// Backward direction, Get returns the k bytes ending at Position and
// advances backward. This is used only by the xref engine's tail scan
// for startxref, where reading "the last N bytes of the file" is the
// natural request.
package tape

import (
	"io"

	"github.com/corewing/pdfnursery/internal/pdferr"
)

// Direction is the tape's current read direction.
type Direction int

const (
	// Forward reads advance Position upward.
	Forward Direction = iota
	// Backward reads advance Position downward.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Tape is a stateful byte window over src. src must support random access
// (io.ReaderAt); Tape never assumes sequential-only reads, which is what
// lets Backward mode work without re-reading the file from the start.
type Tape struct {
	src  io.ReaderAt
	size int64
	pos  int64
	dir  Direction
}

// New creates a Tape over src, whose total length is size. Position starts
// at 0 with Forward direction, mirroring a freshly opened file.
func New(src io.ReaderAt, size int64) *Tape {
	return &Tape{src: src, size: size, dir: Forward}
}

// Size returns the fixed byte length of the backing source.
func (t *Tape) Size() int64 { return t.size }

// Top seeks to the start of the source and sets direction Forward.
func (t *Tape) Top() {
	t.pos = 0
	t.dir = Forward
}

// Bottom seeks to the end of the source and sets direction Backward.
func (t *Tape) Bottom() {
	t.pos = t.size
	t.dir = Backward
}

// GetSeek returns the current Position.
func (t *Tape) GetSeek() int64 { return t.pos }

// Seek moves to absolute position n. n must be within [0, size].
func (t *Tape) Seek(n int64) error {
	if n < 0 || n > t.size {
		return pdferr.New(pdferr.KindTapeBounds, "seek", "position out of range")
	}
	t.pos = n
	return nil
}

// GetForward returns the current Direction.
func (t *Tape) GetForward() Direction { return t.dir }

// SetForward forces Forward direction without moving Position. It is used
// by the resolver, which always switches to Forward before chasing a
// reference, regardless of how the tail scan left the tape.
func (t *Tape) SetForward() { t.dir = Forward }

// window computes the [start, start+n) byte range Get/Peek/Discard would
// touch for k bytes from the current position and direction, clamped to
// the available remainder.
func (t *Tape) window(k int) (start int64, n int64) {
	if k < 0 {
		k = 0
	}
	if t.dir == Forward {
		remaining := t.size - t.pos
		n = int64(k)
		if n > remaining {
			n = remaining
		}
		return t.pos, n
	}
	remaining := t.pos
	n = int64(k)
	if n > remaining {
		n = remaining
	}
	return t.pos - n, n
}

func (t *Tape) read(start, n int64) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := t.src.ReadAt(buf, start); err != nil && err != io.EOF {
		return nil, pdferr.Wrap(err, pdferr.KindTapeIO, "read", err.Error())
	}
	return buf, nil
}

// Peek returns up to k bytes starting at Position (Forward) or ending at
// Position (Backward), without moving Position. The slice may be shorter
// than k at a boundary.
func (t *Tape) Peek(k int) ([]byte, error) {
	start, n := t.window(k)
	return t.read(start, n)
}

// Get returns up to k bytes as Peek would, and advances Position by the
// number of bytes actually returned, in the current direction.
func (t *Tape) Get(k int) ([]byte, error) {
	start, n := t.window(k)
	b, err := t.read(start, n)
	if err != nil {
		return nil, err
	}
	if t.dir == Forward {
		t.pos += n
	} else {
		t.pos -= n
	}
	return b, nil
}

// Discard advances Position exactly as Get would, without returning bytes.
func (t *Tape) Discard(k int) error {
	_, n := t.window(k)
	if t.dir == Forward {
		t.pos += n
	} else {
		t.pos -= n
	}
	return nil
}
