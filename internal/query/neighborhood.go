package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/codestory/codestory/internal/graph"
)

// Neighborhood returns the one-hop neighborhood of center: every edge
// incident to it in either direction, plus — when center is a member
// symbol rather than a structural container — its owning container's
// INHERITANCE and OVERRIDE edges, so a method's neighborhood still shows
// the class hierarchy it participates in. maxEdges bounds the incident
// edge set before the owner-hierarchy addition; a value <= 0 uses
// DefaultNeighborhoodEdges, and the hard ceiling is HardMaxNeighborhoodEdges.
func Neighborhood(ctx context.Context, r Reader, center graph.NodeID, maxEdges int) (*GraphResponse, error) {
	if maxEdges <= 0 {
		maxEdges = DefaultNeighborhoodEdges
	}
	if maxEdges > HardMaxNeighborhoodEdges {
		maxEdges = HardMaxNeighborhoodEdges
	}

	centerNode, err := r.GetNode(ctx, center)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: load center: %w", err)
	}

	out, err := r.EdgesFromSource(ctx, center)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: outgoing edges: %w", err)
	}
	in, err := r.EdgesToTarget(ctx, center, "")
	if err != nil {
		return nil, fmt.Errorf("neighborhood: incoming edges: %w", err)
	}

	byID := make(map[graph.EdgeID]*graph.Edge, len(out)+len(in))
	for _, e := range out {
		byID[e.ID] = e
	}
	for _, e := range in {
		byID[e.ID] = e
	}
	incident := make([]*graph.Edge, 0, len(byID))
	for _, e := range byID {
		incident = append(incident, e)
	}
	sort.Slice(incident, func(i, j int) bool { return incident[i].ID < incident[j].ID })

	truncated := false
	if len(incident) > maxEdges {
		incident = incident[:maxEdges]
		truncated = true
	}

	nodeIDs := map[graph.NodeID]bool{center: true}
	resultEdges := make([]*graph.Edge, 0, len(incident))
	resultEdges = append(resultEdges, incident...)
	for _, e := range incident {
		nodeIDs[e.EffectiveSource()] = true
		nodeIDs[e.EffectiveTarget()] = true
	}

	if !structural(centerNode.Kind) {
		owners, err := r.EdgesToTarget(ctx, center, graph.EdgeMember)
		if err != nil {
			return nil, fmt.Errorf("neighborhood: owner lookup: %w", err)
		}
		for _, ownerEdge := range owners {
			owner := ownerEdge.EffectiveSource()
			nodeIDs[owner] = true
			resultEdges = append(resultEdges, ownerEdge)

			hierEdges, err := hierarchyEdges(ctx, r, owner)
			if err != nil {
				return nil, err
			}
			for _, he := range hierEdges {
				resultEdges = append(resultEdges, he)
				nodeIDs[he.EffectiveSource()] = true
				nodeIDs[he.EffectiveTarget()] = true
			}
		}
	}

	nodes, err := loadNodes(ctx, r, nodeIDs)
	if err != nil {
		return nil, err
	}

	edges := dedupeEdges(resultEdges)
	edges = stripUncertainSkipListed(edges, nodeMap(nodes))

	return &GraphResponse{
		Nodes:     nodes,
		Edges:     edges,
		Truncated: truncated,
	}, nil
}

// hierarchyEdges returns owner's INHERITANCE and OVERRIDE edges in both
// directions, uncapped: an owning type's class hierarchy is always shown
// in full regardless of the neighborhood's incident-edge cap.
func hierarchyEdges(ctx context.Context, r Reader, owner graph.NodeID) ([]*graph.Edge, error) {
	var result []*graph.Edge
	for _, kind := range []graph.EdgeKind{graph.EdgeInheritance, graph.EdgeOverride} {
		out, err := r.EdgesFromSource(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("neighborhood: hierarchy outgoing: %w", err)
		}
		for _, e := range out {
			if e.Kind == kind {
				result = append(result, e)
			}
		}
		in, err := r.EdgesToTarget(ctx, owner, kind)
		if err != nil {
			return nil, fmt.Errorf("neighborhood: hierarchy incoming: %w", err)
		}
		result = append(result, in...)
	}
	return result, nil
}

func loadNodes(ctx context.Context, r Reader, ids map[graph.NodeID]bool) ([]*graph.Node, error) {
	nodes := make([]*graph.Node, 0, len(ids))
	for id := range ids {
		n, err := r.GetNode(ctx, id)
		if err != nil {
			continue
		}
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes, nil
}

func nodeMap(nodes []*graph.Node) map[graph.NodeID]*graph.Node {
	m := make(map[graph.NodeID]*graph.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

// stripUncertainSkipListed clears resolved_target/confidence/certainty on
// any CALL edge whose resolved target is a skip-listed generic method name
// and not certified certain: the query engine must not render a bogus
// disambiguation arrow for a common name resolved with only probable or
// uncertain confidence. The raw edge (source, target, kind) is left
// untouched, so a call is still shown to have happened.
func stripUncertainSkipListed(edges []*graph.Edge, nodeByID map[graph.NodeID]*graph.Node) []*graph.Edge {
	out := make([]*graph.Edge, len(edges))
	for i, e := range edges {
		if e.Kind == graph.EdgeCall && e.ResolvedTarget != nil && (e.Certainty == nil || *e.Certainty != graph.Certain) {
			if target, ok := nodeByID[*e.ResolvedTarget]; ok && graph.IsSkipListed(target.SerializedName) {
				clone := *e
				clone.ResolvedTarget = nil
				clone.Confidence = nil
				clone.Certainty = nil
				out[i] = &clone
				continue
			}
		}
		out[i] = e
	}
	return out
}

func dedupeEdges(edges []*graph.Edge) []*graph.Edge {
	seen := make(map[graph.EdgeID]bool, len(edges))
	out := make([]*graph.Edge, 0, len(edges))
	for _, e := range edges {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
