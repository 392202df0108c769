package search

import (
	"context"
	"testing"

	"github.com/codestory/codestory/internal/graph"
)

type fakeReader struct {
	nodes []*graph.Node
}

func (f fakeReader) AllNodes(ctx context.Context) ([]*graph.Node, error) {
	return f.nodes, nil
}

func buildIndex(t *testing.T, names ...string) *Index {
	t.Helper()
	nodes := make([]*graph.Node, len(names))
	for i, n := range names {
		nodes[i] = &graph.Node{ID: graph.NodeID(i + 1), Kind: graph.KindFunction, SerializedName: n, QualifiedName: "pkg." + n}
	}
	idx, err := Build(context.Background(), fakeReader{nodes: nodes})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestFuzzyExactBeatsSubstring(t *testing.T) {
	idx := buildIndex(t, "Resolve", "ResolveAll", "preResolveHook")

	hits := idx.Fuzzy("Resolve", 0)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].NodeID != 1 {
		t.Fatalf("expected exact match 'Resolve' to rank first, got node %d", hits[0].NodeID)
	}
}

func TestFuzzyPrefixBeatsMidstring(t *testing.T) {
	idx := buildIndex(t, "ResolveAll", "preResolveHook")

	hits := idx.Fuzzy("resolve", 0)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].NodeID != 1 {
		t.Fatalf("expected prefix match 'ResolveAll' to rank above 'preResolveHook', got node %d first", hits[0].NodeID)
	}
}

func TestFuzzyCapLimitsResults(t *testing.T) {
	idx := buildIndex(t, "fooOne", "fooTwo", "fooThree")

	hits := idx.Fuzzy("foo", 2)
	if len(hits) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(hits))
	}
}

func TestFuzzyNoMatchExcluded(t *testing.T) {
	idx := buildIndex(t, "Alpha", "Beta")

	hits := idx.Fuzzy("zzz", 0)
	if len(hits) != 0 {
		t.Fatalf("expected no hits for 'zzz', got %d", len(hits))
	}
}

func TestFullTextMatchesQualifiedName(t *testing.T) {
	idx := buildIndex(t, "Helper")

	hits := idx.FullText("pkg.helper", 0)
	if len(hits) != 1 {
		t.Fatalf("expected 1 full-text hit on qualified name, got %d", len(hits))
	}
}
