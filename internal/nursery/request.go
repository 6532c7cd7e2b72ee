package nursery

import (
	"fmt"

	"github.com/corewing/pdfnursery/internal/object"
)

func unknownRequestKind(k RequestKind) error {
	return fmt.Errorf("nursery: unknown request kind %d", k)
}

// GetDocument returns the Document summary built at attach.
func (n *Nursery) GetDocument() Document {
	return n.document
}

// GetInfo returns the trailer's resolved Info dictionary. It is empty,
// never nil, if the file had no Info entry.
func (n *Nursery) GetInfo() object.Dictionary {
	return n.info
}

// GetHeader returns the parsed version prefix plus the trailer's
// optional /ID array.
func (n *Nursery) GetHeader() Header {
	return n.header
}

// GetPages returns the resolved pages tree root dictionary.
func (n *Nursery) GetPages() object.Dictionary {
	return n.pages
}

// GetReferences returns every Reference in the xref table whose entry is
// marked in-use.
func (n *Nursery) GetReferences() []object.Reference {
	return n.resolver.InUseReferences()
}

// Resolve chases ref through the xref table to its fully resolved
// object, issuing tape seeks and parses as needed. Calling Resolve twice
// for the same reference within one session returns equal Objects.
func (n *Nursery) Resolve(ref object.Reference) (object.Object, error) {
	return n.resolver.Resolve(ref)
}

// RequestKind identifies which operation a Request carries.
type RequestKind int

const (
	RequestGetDocument RequestKind = iota
	RequestGetInfo
	RequestGetHeader
	RequestGetPages
	RequestGetReferences
	RequestResolve
)

// Request is the service-loop request sum type described for the
// session: a caller builds one and passes it to Dispatch rather than
// calling the typed methods directly, when request shapes need to cross
// a queue or log boundary uniformly.
type Request struct {
	Kind RequestKind
	Ref  object.Reference // only meaningful when Kind == RequestResolve
}

// Response carries the result of dispatching one Request. Exactly one of
// the typed fields is populated, selected by Kind.
type Response struct {
	Kind       RequestKind
	Document   Document
	Info       object.Dictionary
	Header     Header
	Pages      object.Dictionary
	References []object.Reference
	Object     object.Object
	Err        error
}

// Dispatch serves one Request against the attached session, matching the
// service loop's dispatch table. State mutation is confined to the
// tape; the attach-time artifacts dispatched here are read-only.
func (n *Nursery) Dispatch(req Request) Response {
	switch req.Kind {
	case RequestGetDocument:
		return Response{Kind: req.Kind, Document: n.GetDocument()}
	case RequestGetInfo:
		return Response{Kind: req.Kind, Info: n.GetInfo()}
	case RequestGetHeader:
		return Response{Kind: req.Kind, Header: n.GetHeader()}
	case RequestGetPages:
		return Response{Kind: req.Kind, Pages: n.GetPages()}
	case RequestGetReferences:
		return Response{Kind: req.Kind, References: n.GetReferences()}
	case RequestResolve:
		obj, err := n.Resolve(req.Ref)
		return Response{Kind: req.Kind, Object: obj, Err: err}
	default:
		return Response{Kind: req.Kind, Err: unknownRequestKind(req.Kind)}
	}
}
