package resolver

import (
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

// CandidateIndex is an in-memory, read-only multi-map over the nodes in
// scope for one resolution pass: normalized name -> node IDs, and
// qualified-name prefix -> node IDs. It is rebuilt per pass and discarded
// after the pass's write transaction commits; it never outlives one
// transaction.
type CandidateIndex struct {
	byName   map[string][]graph.NodeID
	byModule map[string][]graph.NodeID
	fileOf   map[graph.NodeID]graph.NodeID // node id -> owning file id
	nodes    map[graph.NodeID]*graph.Node
}

// BuildCandidateIndex indexes nodes for one resolution pass.
func BuildCandidateIndex(nodes []*graph.Node) *CandidateIndex {
	idx := &CandidateIndex{
		byName:   make(map[string][]graph.NodeID),
		byModule: make(map[string][]graph.NodeID),
		fileOf:   make(map[graph.NodeID]graph.NodeID),
		nodes:    make(map[graph.NodeID]*graph.Node, len(nodes)),
	}
	for _, n := range nodes {
		idx.nodes[n.ID] = n
		if n.FileNodeID != nil {
			idx.fileOf[n.ID] = *n.FileNodeID
		}
		// UNKNOWN placeholders and FILE containers are never resolution
		// targets; indexing them would let a call "resolve" to its own
		// unresolved placeholder.
		if n.Kind == graph.KindUnknown || n.Kind == graph.KindFile {
			continue
		}
		idx.byName[n.SerializedName] = append(idx.byName[n.SerializedName], n.ID)
		if n.QualifiedName != "" {
			if prefix := modulePrefix(n.QualifiedName); prefix != "" {
				idx.byModule[prefix] = append(idx.byModule[prefix], n.ID)
			}
		}
	}
	return idx
}

// ModulePrefix returns a qualified name's container prefix (everything
// before the final separator), trying "::" first then ".". Exported so
// callers building a Request's CallerModulePrefix from a caller node's
// QualifiedName group the same way BuildCandidateIndex did when
// populating byModule.
func ModulePrefix(qualifiedName string) string { return modulePrefix(qualifiedName) }

// modulePrefix returns a qualified name's container prefix (everything
// before the final separator), trying "::" first then ".".
func modulePrefix(qualifiedName string) string {
	if idx := strings.LastIndex(qualifiedName, "::"); idx >= 0 {
		return qualifiedName[:idx]
	}
	if idx := strings.LastIndex(qualifiedName, "."); idx >= 0 {
		return qualifiedName[:idx]
	}
	return ""
}

// byNameIn returns the candidates named name that also belong to file.
func (idx *CandidateIndex) byNameIn(name string, file graph.NodeID) []graph.NodeID {
	var out []graph.NodeID
	for _, id := range idx.byName[name] {
		if idx.fileOf[id] == file {
			out = append(out, id)
		}
	}
	return out
}

// excludeFile filters out candidates owned by file. Import resolution
// uses it so an import never binds back into the importing file itself.
func (idx *CandidateIndex) excludeFile(ids []graph.NodeID, file graph.NodeID) []graph.NodeID {
	out := ids[:0:0]
	for _, id := range ids {
		if idx.fileOf[id] != file {
			out = append(out, id)
		}
	}
	return out
}

// byNameUnderModule returns candidates named name whose qualified name lives
// directly under modulePrefix.
func (idx *CandidateIndex) byNameUnderModule(name, modulePrefix string) []graph.NodeID {
	var out []graph.NodeID
	for _, id := range idx.byModule[modulePrefix] {
		n := idx.nodes[id]
		if n != nil && n.SerializedName == name {
			out = append(out, id)
		}
	}
	return out
}
