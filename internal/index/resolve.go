package index

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/codestory/codestory/internal/graph"
	"github.com/codestory/codestory/internal/resolver"
	"github.com/codestory/codestory/internal/store"
)

// resolveKinds are the edge kinds the resolver binds; member/inheritance/
// override edges and occurrences are never touched by a resolve pass.
var resolveKinds = []graph.EdgeKind{graph.EdgeCall, graph.EdgeImport}

// resolveAll runs one full resolver pass: load every node into a fresh
// CandidateIndex, recompute a Decision for every CALL and IMPORT edge
// (full recompute, not just the unresolved subset, so a newly indexed
// file can upgrade an edge resolved elsewhere to a same-file/same-module
// match), then apply every decision in one write transaction per kind.
//
// Per-edge Resolve calls only read idx and ix.Resolver.Semantic, so the
// compute phase runs concurrently across a CPU-sized worker pool; the
// single apply phase serializes writes.
func (ix *Indexer) resolveAll(ctx context.Context) error {
	if ix.Telemetry == nil {
		ix.Telemetry = resolver.NewTelemetry()
	}
	t := ix.Telemetry

	var allNodes []*graph.Node
	var err error
	t.Time(resolver.PhaseLoadRows, func() {
		allNodes, err = ix.Store.AllNodes(ctx)
	})
	if err != nil {
		return fmt.Errorf("resolve: load nodes: %w", err)
	}
	nodeByID := make(map[graph.NodeID]*graph.Node, len(allNodes))
	for _, n := range allNodes {
		nodeByID[n.ID] = n
	}

	var idx *resolver.CandidateIndex
	t.Time(resolver.PhaseBuildIndex, func() {
		idx = resolver.BuildCandidateIndex(allNodes)
	})

	for _, kind := range resolveKinds {
		if err := ix.resolveKind(ctx, kind, idx, nodeByID, t); err != nil {
			return err
		}
	}
	return nil
}

type resolvedEdge struct {
	id         graph.EdgeID
	target     *graph.NodeID
	confidence *float64
	certainty  *graph.Certainty
	candidates []graph.NodeID
}

func (ix *Indexer) resolveKind(ctx context.Context, kind graph.EdgeKind, idx *resolver.CandidateIndex, nodeByID map[graph.NodeID]*graph.Node, t *resolver.Telemetry) error {
	var edges []*graph.Edge
	var err error
	t.Time(resolver.PhaseLoadRows, func() {
		edges, err = ix.Store.AllEdgesOfKind(ctx, kind)
	})
	if err != nil {
		return fmt.Errorf("resolve %s: load edges: %w", kind, err)
	}
	if len(edges) == 0 {
		return nil
	}

	// Cleanup: a decision's confidence may have been computed under a
	// different floor in a previous pass (e.g. MinConfidenceLegacy); the
	// cleanup step invalidates anything currently stored below the
	// active floor before recomputing, so reruns converge on the active
	// floor rather than keeping stale resolutions around forever.
	t.Time(resolver.PhaseCleanup, func() {
		for _, e := range edges {
			if e.Confidence != nil && *e.Confidence < ix.Resolver.MinConfidence {
				e.ResolvedTarget = nil
				e.Confidence = nil
				e.Certainty = nil
			}
		}
	})

	results := make([]resolvedEdge, len(edges))
	workers := ix.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	t.Time(resolver.PhaseCompute, func() {
		g := new(errgroup.Group)
		g.SetLimit(workers)
		for i, e := range edges {
			i, e := i, e
			g.Go(func() error {
				req := requestFor(e, kind, nodeByID)
				d := idx.Resolve(req, ix.Resolver)
				t.RecordStrategy(d.Strategy)
				r := resolvedEdge{id: e.ID, candidates: d.Candidates}
				if d.ResolvedTarget != nil {
					target := *d.ResolvedTarget
					confidence := d.Confidence
					r.target = &target
					r.confidence = &confidence
					r.certainty = d.Certainty
				}
				results[i] = r
				return nil
			})
		}
		_ = g.Wait()
	})

	t.Time(resolver.PhaseApply, func() {
		err = ix.Store.WithTransaction(ctx, func(tx *store.Store) error {
			for _, r := range results {
				if err := tx.UpdateEdgeResolution(ctx, r.id, r.target, r.confidence, r.certainty, r.candidates); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("resolve %s: apply: %w", kind, err)
	}
	return nil
}

// requestFor builds a resolver.Request for edge e: the callee name comes
// from the raw (pre-resolution) target node's serialized name, since
// that's the text the extractor saw at the call/import site; the caller
// module prefix comes from the source node's qualified name.
func requestFor(e *graph.Edge, kind graph.EdgeKind, nodeByID map[graph.NodeID]*graph.Node) resolver.Request {
	req := resolver.Request{IsImport: kind == graph.EdgeImport}
	if target := nodeByID[e.Target]; target != nil {
		req.CalleeName = target.SerializedName
	}
	if e.FileNodeID != nil {
		req.CallerFileID = *e.FileNodeID
	}
	if caller := nodeByID[e.Source]; caller != nil && caller.QualifiedName != "" {
		req.CallerModulePrefix = resolver.ModulePrefix(caller.QualifiedName)
	}
	return req
}
