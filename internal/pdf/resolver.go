package pdf

import (
	"fmt"

	"github.com/corewing/pdfnursery/internal/logging"
	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdferr"
	"github.com/corewing/pdfnursery/internal/tape"
)

// maxChaseLength bounds reference chasing:
// conforming PDFs never alias this deep, so exceeding it is a cycle.
const maxChaseLength = 32

// Resolver chases indirect references to their parsed object bodies,
// reading through a shared Tape under a single xref table.
type Resolver struct {
	t    *tape.Tape
	xref *XRef
}

// NewResolver builds a Resolver over t using the entries and trailer in xref.
func NewResolver(t *tape.Tape, xref *XRef) *Resolver {
	return &Resolver{t: t, xref: xref}
}

// Resolve looks up ref in the xref table, seeks to its offset, parses one
// indirect object, and transparently chases the result if it is itself a
// Reference, transparently chasing aliases.
func (r *Resolver) Resolve(ref object.Reference) (object.Object, error) {
	current := ref
	for chase := 0; ; chase++ {
		if chase >= maxChaseLength {
			return nil, pdferr.New(pdferr.KindResolverCycle, fmt.Sprintf("%d %d R", ref.Index, ref.Generation), "reference chase exceeded bound")
		}

		entry, ok := r.xref.Entries[current]
		if !ok || !entry.InUse {
			return nil, pdferr.New(pdferr.KindUnresolvedObject, fmt.Sprintf("%d %d R", current.Index, current.Generation), "no in-use xref entry")
		}

		obj, err := ParseIndirectObjectAt(r.t, int64(entry.Offset))
		if err != nil {
			return nil, err
		}
		if obj.Index != current.Index || obj.Generation != current.Generation {
			logging.L().Debugw("xref offset points at a mismatched object header",
				"want", current, "gotIndex", obj.Index, "gotGeneration", obj.Generation)
		}

		next, isRef := object.AsReference(obj.Body)
		if !isRef {
			return obj.Body, nil
		}
		logging.L().Debugw("chasing aliased reference", "from", current, "to", next)
		current = next
	}
}

// ResolveIfReference narrows o to Reference and resolves it through r; any
// other shape is returned unchanged. This is the "act" step the design
// notes describe: extract a reference, call resolve, narrow again.
func (r *Resolver) ResolveIfReference(o object.Object) (object.Object, error) {
	ref, ok := object.AsReference(o)
	if !ok {
		return o, nil
	}
	return r.Resolve(ref)
}

// InUseReferences returns every Reference in the xref table whose entry
// is marked in-use, for the Nursery's GetReferences response.
func (r *Resolver) InUseReferences() []object.Reference {
	refs := make([]object.Reference, 0, len(r.xref.Entries))
	for ref, entry := range r.xref.Entries {
		if entry.InUse {
			refs = append(refs, ref)
		}
	}
	return refs
}
