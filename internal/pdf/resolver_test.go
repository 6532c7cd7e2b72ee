package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
)

func attachResolver(t *testing.T, data []byte) *Resolver {
	t.Helper()
	tp := tapeFromBytes(data)
	offset, err := LocateStartXRef(tp)
	require.NoError(t, err)
	xref, err := ParseXRef(tp, offset)
	require.NoError(t, err)
	return NewResolver(tp, xref)
}

// TestResolveAliasChase covers the aliasing case where
// object 5 is a bare reference to object 6, and object 6 is a dictionary.
// Resolving (5,0) must transparently chase through to the dictionary.
func TestResolveAliasChase(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	got, err := r.Resolve(object.Reference{Index: 5, Generation: 0})
	require.NoError(t, err)

	dict, ok := object.AsDictionary(got)
	require.True(t, ok)
	assert.Equal(t, object.Name("X"), dict["Type"])
}

func TestResolveDirectDictionary(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	got, err := r.Resolve(object.Reference{Index: 6, Generation: 0})
	require.NoError(t, err)
	dict, ok := object.AsDictionary(got)
	require.True(t, ok)
	assert.Equal(t, object.Name("X"), dict["Type"])
}

func TestResolveFreeEntryIsUnresolved(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	_, err := r.Resolve(object.Reference{Index: 0, Generation: 65535})
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindUnresolvedObject))
}

func TestResolveMissingEntryIsUnresolved(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	_, err := r.Resolve(object.Reference{Index: 99, Generation: 0})
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindUnresolvedObject))
}

// buildAliasChain constructs a PDF whose objects 1..n-1 are each a bare
// reference to the next object, and object n is a terminal dictionary.
func buildAliasChain(n int) []byte {
	b := newPDFBuilder("%PDF-1.4\n")
	for i := 1; i < n; i++ {
		b.object(i, formatRef(i+1))
	}
	b.object(n, "<< /Type /Terminal >>")
	return b.finish("/Root 1 0 R")
}

func formatRef(n int) string {
	return itoa(n) + " 0 R"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestResolveCycleBoundExceeded(t *testing.T) {
	r := attachResolver(t, buildAliasChain(40))

	_, err := r.Resolve(object.Reference{Index: 1, Generation: 0})
	require.Error(t, err)
	assert.True(t, pdferr.Is(err, pdferr.KindResolverCycle))
}

func TestResolveWithinCycleBoundSucceeds(t *testing.T) {
	r := attachResolver(t, buildAliasChain(10))

	got, err := r.Resolve(object.Reference{Index: 1, Generation: 0})
	require.NoError(t, err)
	dict, ok := object.AsDictionary(got)
	require.True(t, ok)
	assert.Equal(t, object.Name("Terminal"), dict["Type"])
}

func TestInUseReferences(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	refs := r.InUseReferences()
	assert.Len(t, refs, 6)
}

func TestResolveIfReferencePassesThroughNonReference(t *testing.T) {
	r := attachResolver(t, buildMinimalPDF())

	n := object.Int(7)
	got, err := r.ResolveIfReference(n)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}
