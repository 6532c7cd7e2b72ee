// Package nursery is the session layer: it attaches to a PDF file once,
// building the header, xref, trailer, info, root, pages, and a derived
// Document summary, then serves a small request surface against that
// attached state for the rest of its lifetime.
package nursery

import (
	"io"
	"os"

	"github.com/corewing/pdfnursery/internal/logging"
	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdf"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// Document is the derived summary built once at attach from the pages
// tree root's Count and MediaBox.
type Document struct {
	PageCount int
	Width     int
	Height    int
}

// Header extends the parsed version prefix with the trailer's optional
// /ID array, two byte strings identifying the file and this revision.
// ID is a tolerated-optional field: its absence never aborts attach.
type Header struct {
	pdf.Header
	ID []object.Bytes
}

// Nursery is an attached session over one PDF file. All of its attach-time
// artifacts (header, xref, info, root, pages, document) are immutable for
// the session's lifetime; only the underlying Tape's position/direction
// mutate, and only while serving a Resolve request.
type Nursery struct {
	file *os.File

	tape     *tape.Tape
	xref     *pdf.XRef
	resolver *pdf.Resolver

	header   Header
	info     object.Dictionary
	root     object.Dictionary
	pages    object.Dictionary
	document Document
}

// Open opens path and runs the attach protocol against it, returning a
// ready Nursery. Callers must Close the returned session on every exit
// path.
func Open(path string) (*Nursery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pdferr.Wrap(err, pdferr.KindTapeIO, "open", "failed to open file")
	}

	n, err := attach(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return n, nil
}

// attach runs the seven-step protocol described for session startup:
// header, xref position, xref table, info, root, pages, document summary.
func attach(f *os.File) (*Nursery, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, err
	}
	t := tape.New(f, size)

	version, err := pdf.ParseHeader(t)
	if err != nil {
		return nil, err
	}
	logging.L().Debugw("attach: header parsed", "major", version.Major, "minor", version.Minor)

	xrefPos, err := pdf.LocateStartXRef(t)
	if err != nil {
		return nil, err
	}

	xref, err := pdf.ParseXRef(t, xrefPos)
	if err != nil {
		return nil, err
	}
	logging.L().Debugw("attach: xref parsed", "entries", len(xref.Entries))

	resolver := pdf.NewResolver(t, xref)

	info, err := attachInfo(xref, resolver)
	if err != nil {
		return nil, err
	}

	root, err := attachRoot(xref, resolver)
	if err != nil {
		return nil, err
	}

	pages, err := attachPages(root, resolver)
	if err != nil {
		return nil, err
	}

	doc, err := buildDocument(pages)
	if err != nil {
		return nil, err
	}
	logging.L().Debugw("attach: document summary built",
		"pageCount", doc.PageCount, "width", doc.Width, "height", doc.Height)

	checkPagesConsistency(pages, resolver)

	header := Header{Header: version, ID: trailerID(xref.Trailer)}

	return &Nursery{
		file:     f,
		tape:     t,
		xref:     xref,
		resolver: resolver,
		header:   header,
		info:     info,
		root:     root,
		pages:    pages,
		document: doc,
	}, nil
}

// trailerID extracts the trailer's optional /ID array. Absence or the
// wrong shape yields nil rather than aborting attach.
func trailerID(trailer object.Dictionary) []object.Bytes {
	v, ok := object.DictKey(trailer, "ID")
	if !ok {
		return nil
	}
	arr, ok := object.AsArray(v)
	if !ok {
		return nil
	}
	id := make([]object.Bytes, 0, len(arr))
	for _, elem := range arr {
		b, ok := object.AsBytes(elem)
		if !ok {
			return nil
		}
		id = append(id, b)
	}
	return id
}

// checkPagesConsistency walks the pages tree recursively, counting its
// /Type /Page leaves and logging a mismatch against the root's
// declared /Count. This never fails attach; it is a diagnostic aid only.
func checkPagesConsistency(pages object.Dictionary, resolver *pdf.Resolver) {
	declared, ok := object.AsInteger(pages["Count"])
	if !ok {
		return
	}
	counted, err := countLeaves(pages, resolver, 0)
	if err != nil {
		logging.L().Debugw("pages-tree consistency check could not complete", "error", err)
		return
	}
	if counted != declared {
		logging.L().Warnw("pages-tree consistency check found a mismatch",
			"declaredCount", declared, "walkedCount", counted)
	}
}

// countLeaves recursively counts /Type /Page leaves under node, chasing
// /Kids through resolver one generation at a time.
func countLeaves(node object.Dictionary, resolver *pdf.Resolver, depth int) (int64, error) {
	if depth > maxPagesTreeDepth {
		return 0, pdferr.New(pdferr.KindInvalidDocument, "pages-consistency", "pages tree exceeds depth bound")
	}
	if name, ok := object.AsName(node["Type"]); ok && name == "Page" {
		return 1, nil
	}

	kidsObj, ok := object.DictKey(node, "Kids")
	if !ok {
		return 0, nil
	}
	kids, ok := object.AsArray(kidsObj)
	if !ok {
		return 0, nil
	}

	var total int64
	for _, kidRef := range kids {
		ref, ok := object.AsReference(kidRef)
		if !ok {
			continue
		}
		kidObj, err := resolver.Resolve(ref)
		if err != nil {
			return 0, err
		}
		kid, ok := object.AsDictionary(kidObj)
		if !ok {
			continue
		}
		n, err := countLeaves(kid, resolver, depth+1)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

const maxPagesTreeDepth = 64

func fileSize(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, pdferr.Wrap(err, pdferr.KindTapeIO, "stat", "failed to stat file")
	}
	return fi.Size(), nil
}

// attachInfo resolves trailer["Info"]; a missing or malformed Info entry
// is tolerated (optional trailer fields are not fatal) and yields an
// empty dictionary rather than aborting attach.
func attachInfo(xref *pdf.XRef, resolver *pdf.Resolver) (object.Dictionary, error) {
	v, ok := object.DictKey(xref.Trailer, "Info")
	if !ok {
		return object.Dictionary{}, nil
	}
	ref, ok := object.AsReference(v)
	if !ok {
		return object.Dictionary{}, nil
	}
	resolved, err := resolver.Resolve(ref)
	if err != nil {
		return object.Dictionary{}, nil
	}
	dict, ok := object.AsDictionary(resolved)
	if !ok {
		return object.Dictionary{}, nil
	}
	return dict, nil
}

// attachRoot resolves trailer["Root"]; missing or wrong-shaped is fatal.
func attachRoot(xref *pdf.XRef, resolver *pdf.Resolver) (object.Dictionary, error) {
	v, ok := object.DictKey(xref.Trailer, "Root")
	if !ok {
		return nil, pdferr.New(pdferr.KindRootNotFound, "attach", "trailer has no /Root")
	}
	ref, ok := object.AsReference(v)
	if !ok {
		return nil, pdferr.New(pdferr.KindRootNotFound, "attach", "/Root is not a reference")
	}
	resolved, err := resolver.Resolve(ref)
	if err != nil {
		return nil, pdferr.Wrap(err, pdferr.KindRootNotFound, "attach", "failed to resolve /Root")
	}
	dict, ok := object.AsDictionary(resolved)
	if !ok {
		return nil, pdferr.New(pdferr.KindRootNotFound, "attach", "/Root did not resolve to a dictionary")
	}
	return dict, nil
}

// attachPages resolves root["Pages"]; missing or wrong-shaped is fatal.
func attachPages(root object.Dictionary, resolver *pdf.Resolver) (object.Dictionary, error) {
	v, ok := object.DictKey(root, "Pages")
	if !ok {
		return nil, pdferr.New(pdferr.KindPagesNotFound, "attach", "catalog has no /Pages")
	}
	ref, ok := object.AsReference(v)
	if !ok {
		return nil, pdferr.New(pdferr.KindPagesNotFound, "attach", "/Pages is not a reference")
	}
	resolved, err := resolver.Resolve(ref)
	if err != nil {
		return nil, pdferr.Wrap(err, pdferr.KindPagesNotFound, "attach", "failed to resolve /Pages")
	}
	dict, ok := object.AsDictionary(resolved)
	if !ok {
		return nil, pdferr.New(pdferr.KindPagesNotFound, "attach", "/Pages did not resolve to a dictionary")
	}
	return dict, nil
}

// buildDocument extracts pageCount and the page rectangle's lower-right
// corner from the pages tree root's Count and MediaBox.
func buildDocument(pages object.Dictionary) (Document, error) {
	countObj, ok := object.DictKey(pages, "Count")
	if !ok {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "pages root has no /Count")
	}
	count, ok := object.AsInteger(countObj)
	if !ok || count < 0 {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "/Count is not a non-negative integer")
	}

	boxObj, ok := object.DictKey(pages, "MediaBox")
	if !ok {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "pages root has no /MediaBox")
	}
	box, ok := object.AsArray(boxObj)
	if !ok || len(box) < 4 {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "/MediaBox has fewer than 4 elements")
	}
	widthNum, ok := object.AsNumber(box[2])
	if !ok {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "/MediaBox[2] is not a number")
	}
	heightNum, ok := object.AsNumber(box[3])
	if !ok {
		return Document{}, pdferr.New(pdferr.KindInvalidDocument, "attach", "/MediaBox[3] is not a number")
	}

	return Document{
		PageCount: int(count),
		Width:     int(widthNum.Float()),
		Height:    int(heightNum.Float()),
	}, nil
}

// Close releases the underlying file descriptor. Safe to call once on
// every exit path (success, failure, or caller drop).
func (n *Nursery) Close() error {
	if n.file == nil {
		return nil
	}
	err := n.file.Close()
	n.file = nil
	return err
}

var _ io.Closer = (*Nursery)(nil)
