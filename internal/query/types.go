// Package query implements the trail and neighborhood graph queries: a
// one-hop neighborhood around a center symbol, and a bounded,
// direction- and filter-aware trail traversal including a
// shortest-path-to-target mode via bidirectional BFS.
package query

import (
	"context"

	"github.com/codestory/codestory/internal/graph"
)

// Reader is the subset of internal/store.Store the query engine needs.
// *store.Store satisfies this directly.
type Reader interface {
	GetNode(ctx context.Context, id graph.NodeID) (*graph.Node, error)
	EdgesFromSource(ctx context.Context, node graph.NodeID) ([]*graph.Edge, error)
	EdgesToTarget(ctx context.Context, node graph.NodeID, kind graph.EdgeKind) ([]*graph.Edge, error)
}

// TrailMode selects how Trail expands from root_id.
type TrailMode string

const (
	ModeNeighborhood   TrailMode = "Neighborhood"
	ModeAllReferenced  TrailMode = "AllReferenced"
	ModeAllReferencing TrailMode = "AllReferencing"
	ModeToTargetSymbol TrailMode = "ToTargetSymbol"
)

// TrailDirection constrains which endpoint a traversal step may follow.
type TrailDirection string

const (
	DirectionIncoming TrailDirection = "Incoming"
	DirectionOutgoing TrailDirection = "Outgoing"
	DirectionBoth     TrailDirection = "Both"
)

// CallerScope filters CALL edges by whether their caller file looks like
// test/benchmark code.
type CallerScope string

const (
	ScopeProductionOnly         CallerScope = "ProductionOnly"
	ScopeIncludeTestsAndBenches CallerScope = "IncludeTestsAndBenches"
)

// Bounds on TrailConfig.MaxNodes and the neighborhood edge cap.
const (
	MinMaxNodes              = 10
	MaxMaxNodes              = 100_000
	DefaultNeighborhoodEdges = 400
	HardMaxNeighborhoodEdges = 2000
)

// TrailConfig parameterizes one Trail query.
type TrailConfig struct {
	RootID           graph.NodeID
	Mode             TrailMode
	TargetID         *graph.NodeID
	Depth            int // 0 = infinite, still bounded by MaxNodes
	Direction        TrailDirection
	CallerScope      CallerScope
	EdgeFilter       []graph.EdgeKind
	NodeFilter       []graph.NodeKind
	ShowUtilityCalls bool
	MaxNodes         int
}

// ClampMaxNodes enforces the [MinMaxNodes, MaxMaxNodes] bound. A zero
// or negative value is raised to MinMaxNodes rather than treated as
// "no limit".
func ClampMaxNodes(n int) int {
	switch {
	case n < MinMaxNodes:
		return MinMaxNodes
	case n > MaxMaxNodes:
		return MaxMaxNodes
	default:
		return n
	}
}

// GraphResponse is the shared result shape for both Neighborhood and
// Trail: every node touched, every edge touched, whether any cap forced
// early truncation, each node's BFS distance from the root (DepthMap),
// and — ToTargetSymbol mode only — the reconstructed root-to-target
// Path in order.
type GraphResponse struct {
	Nodes     []*graph.Node
	Edges     []*graph.Edge
	Truncated bool
	DepthMap  map[graph.NodeID]int
	Path      []graph.NodeID
}

func structural(k graph.NodeKind) bool {
	switch k {
	case graph.KindModule, graph.KindNamespace, graph.KindPackage, graph.KindFile:
		return true
	default:
		return false
	}
}

func edgeAllowed(kinds []graph.EdgeKind, k graph.EdgeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

func nodeAllowed(kinds []graph.NodeKind, k graph.NodeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}
