// Package object implements the PDF value algebra: numbers, booleans,
// names, dictionaries, arrays, byte strings, indirect references,
// streams, and null, plus the navigation combinators (dictKey, nth, and
// the typed is-X extractors) used to walk them without a full
// content-stream interpreter.
package object

import "fmt"

// Object is any PDF value. It is a closed tagged union; the concrete
// types below are the only implementations.
type Object interface {
	fmt.Stringer
	isObject()
}

// Number is a tagged union of Integer and Real. Equality is structural
// within the same tag: two Integers compare by value, two Reals compare
// by value, and an Integer never equals a Real even if numerically equal.
// Callers that want numeric equality should compare Float() results.
type Number struct {
	isReal bool
	i      int64
	r      float64
}

// Int returns an Integer number.
func Int(i int64) Number { return Number{i: i} }

// Real returns a Real number.
func Real(r float64) Number { return Number{isReal: true, r: r} }

func (Number) isObject() {}

// IsInteger reports whether this Number is the Integer variant.
func (n Number) IsInteger() bool { return !n.isReal }

// AsInteger returns the integer value and true only when this Number is
// the Integer variant (its "natural view").
func (n Number) AsInteger() (int64, bool) {
	if n.isReal {
		return 0, false
	}
	return n.i, true
}

// Float returns the numeric value regardless of tag.
func (n Number) Float() float64 {
	if n.isReal {
		return n.r
	}
	return float64(n.i)
}

// Equal reports structural equality within the same tag.
func (n Number) Equal(o Number) bool {
	if n.isReal != o.isReal {
		return false
	}
	if n.isReal {
		return n.r == o.r
	}
	return n.i == o.i
}

func (n Number) String() string {
	if n.isReal {
		return fmt.Sprintf("%g", n.r)
	}
	return fmt.Sprintf("%d", n.i)
}

// Boolean is a PDF true/false literal.
type Boolean bool

func (Boolean) isObject()      {}
func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Name is a PDF name token, stored without its leading '/' and with any
// #hh escapes already decoded.
type Name string

func (Name) isObject()        {}
func (n Name) String() string { return "/" + string(n) }

// Bytes is an arbitrary byte string produced by either literal ( ) or hex
// < > string syntax. The parser never distinguishes the two once parsed;
// Text provides an Info-dictionary-aware decode into a Go string.
type Bytes []byte

func (Bytes) isObject()        {}
func (b Bytes) String() string { return string(b) }

// Null is the PDF null literal.
type Null struct{}

func (Null) isObject()        {}
func (Null) String() string   { return "null" }

// Reference is an indirect reference (index, generation). Two References
// compare equal iff both components match.
type Reference struct {
	Index      uint32
	Generation uint32
}

func (Reference) isObject() {}
func (r Reference) String() string {
	return fmt.Sprintf("%d %d R", r.Index, r.Generation)
}

// Array is an ordered sequence of Objects.
type Array []Object

func (Array) isObject()        {}
func (a Array) String() string { return fmt.Sprintf("%v", []Object(a)) }

// Dictionary maps name keys (without leading '/') to Objects. Key
// uniqueness is enforced by the parser (duplicate keys take the last
// occurrence); iteration order is not semantically meaningful.
type Dictionary map[string]Object

func (Dictionary) isObject()        {}
func (d Dictionary) String() string { return fmt.Sprintf("%v", map[string]Object(d)) }

// Stream pairs a stream dictionary with the byte offset of the first
// content byte after the "stream" keyword. Raw bytes are never eagerly
// materialized by the parser; Filter records the cataloged filter name
// (e.g. "FlateDecode") without decoding it.
type Stream struct {
	Dict      Dictionary
	StreamPos int64
	Filter    string
}

func (Stream) isObject() {}
func (s Stream) String() string {
	return fmt.Sprintf("stream@%d{%v}", s.StreamPos, s.Dict)
}
