package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberNaturalView(t *testing.T) {
	i := Int(42)
	v, ok := i.AsInteger()
	require.True(t, ok)
	assert.EqualValues(t, 42, v)

	r := Real(3.5)
	_, ok = r.AsInteger()
	assert.False(t, ok, "Real never has an integer natural view")
	assert.Equal(t, 3.5, r.Float())
}

func TestNumberEqualityIsTagScoped(t *testing.T) {
	assert.True(t, Int(2).Equal(Int(2)))
	assert.False(t, Int(2).Equal(Real(2)), "Integer(2) != Real(2.0) structurally")
	assert.True(t, Real(2).Equal(Real(2)))
}

func TestReferenceEquality(t *testing.T) {
	a := Reference{Index: 5, Generation: 0}
	b := Reference{Index: 5, Generation: 0}
	c := Reference{Index: 5, Generation: 1}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestDictKeyAndNth(t *testing.T) {
	d := Dictionary{
		"Type":  Name("Catalog"),
		"Pages": Reference{Index: 2, Generation: 0},
	}
	v, ok := DictKey(d, "Pages")
	require.True(t, ok)
	ref, ok := AsReference(v)
	require.True(t, ok)
	assert.Equal(t, Reference{Index: 2, Generation: 0}, ref)

	_, ok = DictKey(d, "Missing")
	assert.False(t, ok)

	arr := Array{Int(1), Int(2), Int(3)}
	nv, ok := Nth(arr, 1)
	require.True(t, ok)
	n, ok := AsInteger(nv)
	require.True(t, ok)
	assert.EqualValues(t, 2, n)

	_, ok = Nth(arr, 99)
	assert.False(t, ok)
}

func TestUpdateDictKeyLeavesAbsentUnchanged(t *testing.T) {
	d := Dictionary{"Count": Int(3)}
	before := Dictionary{"Count": Int(3)}

	UpdateDictKey(d, "Missing", func(o Object) Object { return Int(99) })
	if diff := cmp.Diff(before, d); diff != "" {
		t.Fatalf("dictionary mutated on absent key: %s", diff)
	}

	UpdateDictKey(d, "Count", func(o Object) Object {
		n, _ := AsInteger(o)
		return Int(n + 1)
	})
	n, ok := AsInteger(d["Count"])
	require.True(t, ok)
	assert.EqualValues(t, 4, n)
}

func TestBytesTextDecodesUTF16BOM(t *testing.T) {
	plain := Bytes("hello")
	assert.Equal(t, "hello", plain.Text())

	utf16be := Bytes([]byte{0xFE, 0xFF, 0x00, 0x41, 0x00, 0x42})
	assert.Equal(t, "AB", utf16be.Text())
}
