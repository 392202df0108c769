package resolver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codestory/codestory/internal/graph"
)

func node(id graph.NodeID, file graph.NodeID, name, qn string) *graph.Node {
	return &graph.Node{
		ID:             id,
		Kind:           graph.KindFunction,
		SerializedName: name,
		QualifiedName:  qn,
		FileNodeID:     &file,
	}
}

func TestSkipListBypassesSameFileAndGlobalUnique(t *testing.T) {
	// struct Hist { fn push(&mut self) } defines push in file 1; caller
	// in file 2 invokes vec.push(3). Generic names like push/sort/dedup
	// calls must stay unresolved even though a unique "push" exists.
	file1, file2 := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(10, file1, "push", "Hist.push"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "push", CallerFileID: file2, CallerModulePrefix: "caller_mod"}, cfg)
	require.Nil(t, d.ResolvedTarget, "skip-listed name must not resolve via same-file/global-unique")
}

func TestSkipListStillResolvesViaSameModule(t *testing.T) {
	file1 := graph.NodeID(1)
	nodes := []*graph.Node{
		node(10, file1, "push", "collections.Buffer.push"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "push", CallerFileID: graph.NodeID(99), CallerModulePrefix: "collections.Buffer"}, cfg)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, graph.NodeID(10), *d.ResolvedTarget)
	require.Equal(t, StrategySameModule, d.Strategy)
	require.InDelta(t, ConfidenceSameModule, d.Confidence, 0.0001)
}

func TestSameFileResolvesWithHighConfidence(t *testing.T) {
	file1 := graph.NodeID(1)
	nodes := []*graph.Node{
		node(20, file1, "helper", "pkg.helper"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "helper", CallerFileID: file1}, cfg)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, StrategySameFile, d.Strategy)
	require.Equal(t, graph.Certain, *d.Certainty)
}

func TestGlobalUniqueResolvesAcrossFiles(t *testing.T) {
	file1, file2 := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(30, file1, "Repository", "lib.Repository"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "Repository", CallerFileID: file2}, cfg)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, StrategyGlobalUnique, d.Strategy)
	require.Equal(t, graph.Probable, *d.Certainty)
}

func TestMinConfidenceGateDropsBelowFloor(t *testing.T) {
	file1, file2 := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(40, file1, "Repository", "lib.Repository"),
	}
	idx := BuildCandidateIndex(nodes)
	// Raise the floor above global-unique's 0.62 confidence.
	cfg := Config{MinConfidence: 0.70, StoreAllCandidates: true}

	d := idx.Resolve(Request{CalleeName: "Repository", CallerFileID: file2}, cfg)
	require.Nil(t, d.ResolvedTarget)
	require.Nil(t, d.Certainty)
	require.Equal(t, 0.0, d.Confidence)
	require.NotEmpty(t, d.Candidates, "candidates are retained even when the resolution is gated out")
}

func TestAmbiguousGlobalNameStaysUnresolved(t *testing.T) {
	file1, file2, file3 := graph.NodeID(1), graph.NodeID(2), graph.NodeID(3)
	nodes := []*graph.Node{
		node(50, file1, "New", "a.New"),
		node(51, file2, "New", "b.New"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "New", CallerFileID: file3}, cfg)
	require.Nil(t, d.ResolvedTarget)
	require.Len(t, d.Candidates, 2)
}

func TestImportDoesNotResolveBackIntoCallersOwnFile(t *testing.T) {
	// Cross-file import scenario: the import must resolve to the
	// Repository type defined elsewhere, not anything in the caller's
	// own file.
	callerFile, libFile := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(60, libFile, "Repository", "lib.Repository"),
		node(61, callerFile, "Repo", "main.Repo"), // local alias binding, different name
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	d := idx.Resolve(Request{CalleeName: "Repository", CallerFileID: callerFile, IsImport: true}, cfg)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, graph.NodeID(60), *d.ResolvedTarget)
}

func TestFuzzyImportFallbackOnlyAppliesToImports(t *testing.T) {
	callerFile, otherFile := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(70, otherFile, "RepositoryImpl", "lib.RepositoryImpl"),
	}
	idx := BuildCandidateIndex(nodes)
	cfg := DefaultConfig()

	// Not an import: fuzzy stage must not fire, leaving the call edge
	// unresolved (RepositoryImpl != Repository exactly, no unique name
	// match).
	d := idx.Resolve(Request{CalleeName: "Repository", CallerFileID: callerFile, IsImport: false}, cfg)
	require.Nil(t, d.ResolvedTarget)

	// As an import, the substring fuzzy stage may bind it at low
	// confidence, and the gate drops it under the default 0.60 floor.
	d = idx.Resolve(Request{CalleeName: "Repository", CallerFileID: callerFile, IsImport: true}, cfg)
	require.Nil(t, d.ResolvedTarget, "fuzzy-import confidence (0.35) is below the default floor")

	// With the floor at the fuzzy-import confidence it is retained (the
	// 0.40 legacy floor would still drop it).
	lowFloor := Config{MinConfidence: ConfidenceFuzzyImport, StoreAllCandidates: true}
	d = idx.Resolve(Request{CalleeName: "Repository", CallerFileID: callerFile, IsImport: true}, lowFloor)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, StrategyFuzzyImport, d.Strategy)
}

type stubSemantic struct {
	suggestions []SemanticSuggestion
}

func (s stubSemantic) Suggest(req Request) []SemanticSuggestion { return s.suggestions }

func TestSemanticFallbackRespectsSkipListCertaintyRequirement(t *testing.T) {
	file1, file2 := graph.NodeID(1), graph.NodeID(2)
	nodes := []*graph.Node{
		node(80, file1, "push", "other.push"),
	}
	idx := BuildCandidateIndex(nodes)

	probable := graph.NodeID(80)
	cfg := Config{
		MinConfidence: MinConfidenceDefault,
		Semantic:      stubSemantic{suggestions: []SemanticSuggestion{{Target: probable, Confidence: 0.75, Certain: false}}},
	}
	d := idx.Resolve(Request{CalleeName: "push", CallerFileID: file2}, cfg)
	require.Nil(t, d.ResolvedTarget, "skip-listed name requires certain semantic confidence")

	cfg.Semantic = stubSemantic{suggestions: []SemanticSuggestion{{Target: probable, Confidence: 0.75, Certain: true}}}
	d = idx.Resolve(Request{CalleeName: "push", CallerFileID: file2}, cfg)
	require.NotNil(t, d.ResolvedTarget)
	require.Equal(t, graph.Certain, *d.Certainty)
}
