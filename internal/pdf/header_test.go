package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewing/pdfnursery/internal/pdferr"
)

func TestParseHeaderReadsVersion(t *testing.T) {
	tp := newTape("%PDF-1.4\n1 0 obj\n<< >>\nendobj\n")

	h, err := ParseHeader(tp)
	require.NoError(t, err)
	assert.Equal(t, Header{Major: 1, Minor: 4}, h)
}

func TestParseHeaderRejectsMissingPrefix(t *testing.T) {
	tp := newTape("not a pdf file at all")

	_, err := ParseHeader(tp)
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindParseError))
}

func TestParseHeaderRejectsShortFile(t *testing.T) {
	tp := newTape("%PDF-1")

	_, err := ParseHeader(tp)
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindParseError))
}
