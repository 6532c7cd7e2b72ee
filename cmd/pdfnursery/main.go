package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/corewing/pdfnursery/internal/logging"
	"github.com/corewing/pdfnursery/internal/nursery"
	"github.com/corewing/pdfnursery/internal/object"
	"github.com/corewing/pdfnursery/internal/pdf"
	"github.com/corewing/pdfnursery/internal/pdferr"
)

// summary is the JSON shape printed for a successfully attached session:
// the document overview, the info dictionary, the pages tree root, and
// every in-use reference fully resolved.
type summary struct {
	Header   headerView        `json:"header"`
	Document nursery.Document  `json:"document"`
	Info     map[string]string `json:"info"`
	Pages    map[string]string `json:"pages"`
	Resolved map[string]string `json:"resolved"`
}

type headerView struct {
	Major int      `json:"major"`
	Minor int      `json:"minor"`
	ID    []string `json:"id,omitempty"`
}

func main() {
	verbose := flag.Bool("verbose", false, "Enable debug logging to stderr")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: pdfnursery [--verbose] <path_to_pdf>")
	}
	path := flag.Arg(0)

	if *verbose {
		zl, err := zap.NewDevelopment()
		if err == nil {
			logging.SetLogger(zl)
		}
	}

	s, err := summarize(path)
	if err != nil {
		if kind, ok := pdferr.KindOf(err); ok {
			log.Fatalf("%s: %v", kind, err)
		}
		log.Fatalf("failed to load %s: %v", path, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(s); err != nil {
		log.Fatalf("failed to encode JSON: %v", err)
	}
}

func summarize(path string) (summary, error) {
	n, err := nursery.Open(path)
	if err != nil {
		return summary{}, err
	}
	defer n.Close()

	header := n.GetHeader()
	hv := headerView{Major: header.Major, Minor: header.Minor}
	for _, id := range header.ID {
		hv.ID = append(hv.ID, string(id))
	}

	s := summary{
		Header:   hv,
		Document: n.GetDocument(),
		Info:     describeDictionary(n.GetInfo(), n),
		Pages:    describeDictionary(n.GetPages(), n),
		Resolved: make(map[string]string),
	}

	for _, ref := range n.GetReferences() {
		obj, err := n.Resolve(ref)
		if err != nil {
			s.Resolved[ref.String()] = "error: " + err.Error()
			continue
		}
		s.Resolved[ref.String()] = renderObject(obj, n)
	}

	return s, nil
}

// describeDictionary renders every value in d through renderObject, so a
// /Title or /Author value typed as object.Bytes is decoded
// rather than printed as raw bytes.
func describeDictionary(d object.Dictionary, n *nursery.Nursery) map[string]string {
	out := make(map[string]string, len(d))
	for k, v := range d {
		out[k] = renderObject(v, n)
	}
	return out
}

// renderObject formats o for display: text strings are decoded through
// Bytes.Text (so a UTF-16BE-with-BOM value renders as real text rather
// than raw bytes), and streams additionally report their resolved
// length alongside the cataloged filter name.
func renderObject(o object.Object, n *nursery.Nursery) string {
	switch v := o.(type) {
	case object.Bytes:
		return v.Text()
	case object.Stream:
		length, err := pdf.StreamLength(v.Dict, n.Resolve)
		if err != nil {
			return fmt.Sprintf("stream@%d{filter=%s length=<%v>}", v.StreamPos, v.Filter, err)
		}
		return fmt.Sprintf("stream@%d{filter=%s length=%d}", v.StreamPos, v.Filter, length)
	default:
		return o.String()
	}
}
