package store

import (
	"context"
	"testing"

	"github.com/codestory/codestory/internal/graph"
)

func TestOpenMemory(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	s.Close()
}

func TestMigrateStampsLatestVersion(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.DB().QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != schemaVersion {
		t.Fatalf("expected schema version %d, got %d", schemaVersion, version)
	}
}

func TestMigrateRefusesNewerVersion(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()

	if _, err := s.DB().Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("stamp future version: %v", err)
	}
	if err := migrate(s.DB()); err == nil {
		t.Fatal("expected migrate to refuse a database newer than this binary understands")
	}
}

func TestNodeInsertAndGet(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	nodes := []*graph.Node{
		{Kind: graph.KindFunction, SerializedName: "Foo", QualifiedName: "main.Foo"},
	}
	ids, err := s.InsertNodesBatch(ctx, nodes)
	if err != nil {
		t.Fatalf("InsertNodesBatch: %v", err)
	}
	if len(ids) != 1 || ids[0] == 0 {
		t.Fatalf("expected one non-zero id, got %v", ids)
	}

	got, err := s.GetNode(ctx, ids[0])
	if err != nil {
		t.Fatalf("GetNode: %v", err)
	}
	if got.SerializedName != "Foo" || got.QualifiedName != "main.Foo" {
		t.Fatalf("unexpected node: %+v", got)
	}
}

func TestInsertNodesBatchChunksAcrossBindLimit(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	n := nodesBatchSize*2 + 5
	nodes := make([]*graph.Node, n)
	for i := range nodes {
		nodes[i] = &graph.Node{Kind: graph.KindVariable, SerializedName: "v"}
	}
	ids, err := s.InsertNodesBatch(ctx, nodes)
	if err != nil {
		t.Fatalf("InsertNodesBatch: %v", err)
	}
	if len(ids) != n {
		t.Fatalf("expected %d ids, got %d", n, len(ids))
	}
	seen := make(map[graph.NodeID]bool, n)
	for _, id := range ids {
		if id == 0 {
			t.Fatal("unexpected zero id")
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
}

func TestEdgeInsertAndResolve(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	nodes := []*graph.Node{
		{Kind: graph.KindFunction, SerializedName: "caller"},
		{Kind: graph.KindFunction, SerializedName: "callee"},
	}
	ids, err := s.InsertNodesBatch(ctx, nodes)
	if err != nil {
		t.Fatalf("InsertNodesBatch: %v", err)
	}

	unknown := &graph.Node{Kind: graph.KindUnknown, SerializedName: "callee"}
	unknownIDs, err := s.InsertNodesBatch(ctx, []*graph.Node{unknown})
	if err != nil {
		t.Fatalf("insert unknown node: %v", err)
	}

	edges := []*graph.Edge{
		{Kind: graph.EdgeCall, Source: ids[0], Target: unknownIDs[0], CallsiteIdentity: "a.go:caller:10"},
	}
	edgeIDs, err := s.InsertEdgesBatch(ctx, edges)
	if err != nil {
		t.Fatalf("InsertEdgesBatch: %v", err)
	}

	got, err := s.FindEdgeByCallsite(ctx, "a.go:caller:10")
	if err != nil {
		t.Fatalf("FindEdgeByCallsite: %v", err)
	}
	if got.ID != edgeIDs[0] {
		t.Fatalf("expected edge id %d, got %d", edgeIDs[0], got.ID)
	}
	if got.ResolvedTarget != nil {
		t.Fatal("expected unresolved edge")
	}

	confidence := 0.95
	certainty := graph.Certain
	if err := s.UpdateEdgeResolution(ctx, got.ID, &ids[1], &confidence, &certainty, nil); err != nil {
		t.Fatalf("UpdateEdgeResolution: %v", err)
	}

	resolved, err := s.FindEdgeByCallsite(ctx, "a.go:caller:10")
	if err != nil {
		t.Fatalf("FindEdgeByCallsite after resolve: %v", err)
	}
	if resolved.ResolvedTarget == nil || *resolved.ResolvedTarget != ids[1] {
		t.Fatalf("expected resolved target %d, got %v", ids[1], resolved.ResolvedTarget)
	}
	if resolved.EffectiveTarget() != ids[1] {
		t.Fatalf("expected effective target %d, got %d", ids[1], resolved.EffectiveTarget())
	}
}

func TestOccurrenceUniqueIndexIgnoresDuplicates(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	nodes := []*graph.Node{{Kind: graph.KindFunction, SerializedName: "Foo"}}
	ids, err := s.InsertNodesBatch(ctx, nodes)
	if err != nil {
		t.Fatalf("InsertNodesBatch: %v", err)
	}

	occ := &graph.Occurrence{
		ElementID: int64(ids[0]), FileNodeID: 1,
		Range: graph.SourceRange{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 3},
		Kind:  graph.OccDefinition,
	}
	// Insert twice; the unique index should silently drop the repeat.
	if err := s.InsertOccurrencesBatch(ctx, []*graph.Occurrence{occ, occ}); err != nil {
		t.Fatalf("InsertOccurrencesBatch: %v", err)
	}

	got, err := s.OccurrencesForElement(ctx, int64(ids[0]))
	if err != nil {
		t.Fatalf("OccurrencesForElement: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 occurrence after duplicate insert, got %d", len(got))
	}
}

func TestRemoveFileCascades(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	fileNode := &graph.Node{Kind: graph.KindFile, SerializedName: "a.go"}
	fileIDs, err := s.InsertNodesBatch(ctx, []*graph.Node{fileNode})
	if err != nil {
		t.Fatalf("insert file node: %v", err)
	}
	fileID := fileIDs[0]
	if err := s.UpsertFile(ctx, &graph.FileInfo{ID: fileID, Path: "a.go", Language: "go"}); err != nil {
		t.Fatalf("UpsertFile: %v", err)
	}

	child := &graph.Node{Kind: graph.KindFunction, SerializedName: "Foo", FileNodeID: &fileID}
	childIDs, err := s.InsertNodesBatch(ctx, []*graph.Node{child})
	if err != nil {
		t.Fatalf("insert child node: %v", err)
	}

	other := &graph.Node{Kind: graph.KindFunction, SerializedName: "Bar"}
	otherIDs, err := s.InsertNodesBatch(ctx, []*graph.Node{other})
	if err != nil {
		t.Fatalf("insert other node: %v", err)
	}

	edges := []*graph.Edge{
		{Kind: graph.EdgeCall, Source: otherIDs[0], Target: childIDs[0], FileNodeID: &otherIDs[0]},
	}
	if _, err := s.InsertEdgesBatch(ctx, edges); err != nil {
		t.Fatalf("InsertEdgesBatch: %v", err)
	}

	if err := s.RemoveFile(ctx, fileID); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}

	if _, err := s.GetNode(ctx, childIDs[0]); err != ErrNotFound {
		t.Fatalf("expected child node removed, got err=%v", err)
	}
	if _, err := s.FileByPath(ctx, "a.go"); err != ErrNotFound {
		t.Fatalf("expected file row removed, got err=%v", err)
	}

	remaining, err := s.EdgesFromSource(ctx, otherIDs[0])
	if err != nil {
		t.Fatalf("EdgesFromSource: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected referencing edge removed by cascade, found %d", len(remaining))
	}
}

func TestBookmarkRoundTrip(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	nodes := []*graph.Node{{Kind: graph.KindFunction, SerializedName: "Foo"}}
	ids, err := s.InsertNodesBatch(ctx, nodes)
	if err != nil {
		t.Fatalf("InsertNodesBatch: %v", err)
	}

	catID, err := s.CreateBookmarkCategory(ctx, "favorites")
	if err != nil {
		t.Fatalf("CreateBookmarkCategory: %v", err)
	}
	if err := s.PinNode(ctx, catID, ids[0], "check this later"); err != nil {
		t.Fatalf("PinNode: %v", err)
	}

	pinned, err := s.NodesInCategory(ctx, catID)
	if err != nil {
		t.Fatalf("NodesInCategory: %v", err)
	}
	if len(pinned) != 1 || pinned[0].NodeID != ids[0] || pinned[0].Note != "check this later" {
		t.Fatalf("unexpected pins: %+v", pinned)
	}
}
