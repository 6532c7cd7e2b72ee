package tape

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTape(data string) *Tape {
	r := bytes.NewReader([]byte(data))
	return New(r, int64(len(data)))
}

func TestTopBottom(t *testing.T) {
	tp := newTestTape("0123456789")

	tp.Bottom()
	assert.Equal(t, int64(10), tp.GetSeek())
	assert.Equal(t, Backward, tp.GetForward())

	tp.Top()
	assert.Equal(t, int64(0), tp.GetSeek())
	assert.Equal(t, Forward, tp.GetForward())
}

func TestForwardGetAdvances(t *testing.T) {
	tp := newTestTape("abcdef")

	b, err := tp.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), b)
	assert.Equal(t, int64(3), tp.GetSeek())

	b, err = tp.Get(10)
	require.NoError(t, err)
	assert.Equal(t, []byte("def"), b, "short read at EOF returns fewer bytes, no error")
	assert.Equal(t, int64(6), tp.GetSeek())
}

func TestBackwardGetAdvancesDownward(t *testing.T) {
	tp := newTestTape("abcdefgh")
	tp.Bottom()

	b, err := tp.Get(3)
	require.NoError(t, err)
	assert.Equal(t, []byte("fgh"), b)
	assert.Equal(t, int64(5), tp.GetSeek())

	b, err = tp.Get(100)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), b)
	assert.Equal(t, int64(0), tp.GetSeek())
}

func TestPeekDoesNotMove(t *testing.T) {
	tp := newTestTape("hello world")

	b, err := tp.Peek(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
	assert.Equal(t, int64(0), tp.GetSeek())

	b, err = tp.Peek(5)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b, "peek is idempotent")
}

func TestDiscardMovesWithoutData(t *testing.T) {
	tp := newTestTape("0123456789")
	err := tp.Discard(4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), tp.GetSeek())

	b, err := tp.Get(2)
	require.NoError(t, err)
	assert.Equal(t, []byte("45"), b)
}

func TestSeekOutOfBoundsFails(t *testing.T) {
	tp := newTestTape("abc")
	err := tp.Seek(-1)
	assert.Error(t, err)
	err = tp.Seek(4)
	assert.Error(t, err)
	err = tp.Seek(3)
	assert.NoError(t, err, "seeking exactly to size is valid (EOF position)")
}

func TestSetForwardDoesNotMovePosition(t *testing.T) {
	tp := newTestTape("0123456789")
	tp.Bottom()
	require.NoError(t, tp.Seek(4))
	assert.Equal(t, Backward, tp.GetForward())

	tp.SetForward()
	assert.Equal(t, Forward, tp.GetForward())
	assert.Equal(t, int64(4), tp.GetSeek())
}
