// Package extract turns one source file into graph fragments: nodes,
// edges, and occurrences. Extraction never touches storage; results are
// pure data, assigned dense IDs and upserted by internal/index.
package extract

import (
	"fmt"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/lang"
)

// FileInput is the extractor's input: a file path, its language tag, and
// its raw contents.
type FileInput struct {
	Path     string
	Language lang.Language
	Source   []byte
}

// LocalRef identifies an extraction-local node: either the implicit file
// module node (IsModule) or an index into the same IndexResult's Nodes
// slice. internal/index translates LocalRefs to real graph.NodeIDs once
// nodes are assigned dense IDs.
type LocalRef struct {
	IsModule bool
	Index    int
}

// ModuleRef is the LocalRef meaning "this file's module/file node".
var ModuleRef = LocalRef{IsModule: true}

// NodeRef returns a LocalRef pointing at Nodes[i].
func NodeRef(i int) LocalRef { return LocalRef{Index: i} }

// LocalNode is one symbol found in the file, addressed by its position
// in IndexResult.Nodes.
type LocalNode struct {
	Kind           graph.NodeKind
	SerializedName string
	QualifiedName  string
	Range          graph.SourceRange
}

// LocalEdge is a directed relation between two LocalRefs.
type LocalEdge struct {
	Kind             graph.EdgeKind
	Source           LocalRef
	Target           LocalRef
	Line             int
	CallsiteIdentity string
}

// LocalOccurrence anchors a source range to a LocalRef.
type LocalOccurrence struct {
	Element LocalRef
	Range   graph.SourceRange
	Kind    graph.OccurrenceKind
}

// IndexResult is one file's extraction output.
type IndexResult struct {
	Nodes       []LocalNode
	Edges       []LocalEdge
	Occurrences []LocalOccurrence
	Errors      []*graph.ErrorInfo
}

func (r *IndexResult) addNode(n LocalNode) LocalRef {
	r.Nodes = append(r.Nodes, n)
	return NodeRef(len(r.Nodes) - 1)
}

func (r *IndexResult) addEdge(e LocalEdge) {
	r.Edges = append(r.Edges, e)
}

func (r *IndexResult) addOccurrence(o LocalOccurrence) {
	r.Occurrences = append(r.Occurrences, o)
}

// unknown appends an UNKNOWN placeholder node carrying the raw text seen
// at a call site, import target, or inheritance reference, and returns
// its LocalRef.
func (r *IndexResult) unknown(name string, rng graph.SourceRange) LocalRef {
	return r.addNode(LocalNode{
		Kind:           graph.KindUnknown,
		SerializedName: name,
		Range:          rng,
	})
}

// Extractor is the per-language contract: deterministic parse of a file
// into graph fragments. Implementations never mutate shared state and
// never abort on malformed input — partial results plus Errors entries
// are always preferred over a hard failure.
type Extractor interface {
	Extract(input FileInput) (*IndexResult, error)
}

// New returns the tree-sitter-backed Extractor for l, or an error if the
// language has no registered grammar.
func New(l lang.Language) (Extractor, error) {
	spec := lang.ForLanguage(l)
	if spec == nil {
		return nil, fmt.Errorf("extract: no language spec registered for %s", l)
	}
	return &treeSitterExtractor{spec: spec}, nil
}
