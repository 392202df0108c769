package query

import (
	"context"
	"fmt"
	"sort"

	"github.com/codestory/codestory/internal/graph"
)

// Trail runs a bounded, filtered traversal from cfg.RootID according to
// cfg.Mode. Neighborhood/AllReferenced/AllReferencing share one
// direction-aware BFS; ToTargetSymbol runs a bidirectional BFS and
// reconstructs the shortest admissible path.
func Trail(ctx context.Context, r Reader, cfg TrailConfig) (*GraphResponse, error) {
	cfg.MaxNodes = ClampMaxNodes(cfg.MaxNodes)

	if _, err := r.GetNode(ctx, cfg.RootID); err != nil {
		return nil, fmt.Errorf("trail: load root: %w", err)
	}

	switch cfg.Mode {
	case ModeNeighborhood:
		return bfs(ctx, r, cfg, cfg.Direction)
	case ModeAllReferenced:
		return bfs(ctx, r, cfg, DirectionOutgoing)
	case ModeAllReferencing:
		return bfs(ctx, r, cfg, DirectionIncoming)
	case ModeToTargetSymbol:
		if cfg.TargetID == nil {
			return nil, fmt.Errorf("trail: ToTargetSymbol requires target_id")
		}
		if _, err := r.GetNode(ctx, *cfg.TargetID); err != nil {
			return nil, fmt.Errorf("trail: load target: %w", err)
		}
		return toTarget(ctx, r, cfg)
	default:
		return nil, fmt.Errorf("trail: unknown mode %q", cfg.Mode)
	}
}

type step struct {
	node graph.NodeID
	edge *graph.Edge
}

// neighbors returns the (neighbor, edge) pairs reachable from node in the
// given direction, applying cfg's edge/node/caller-scope/utility filters.
func neighbors(ctx context.Context, r Reader, cfg TrailConfig, node graph.NodeID, dir TrailDirection) ([]step, error) {
	var steps []step

	if dir == DirectionOutgoing || dir == DirectionBoth {
		edges, err := r.EdgesFromSource(ctx, node)
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if ok, err := admissible(ctx, r, cfg, e); err != nil {
				return nil, err
			} else if ok {
				steps = append(steps, step{node: e.EffectiveTarget(), edge: e})
			}
		}
	}
	if dir == DirectionIncoming || dir == DirectionBoth {
		edges, err := r.EdgesToTarget(ctx, node, "")
		if err != nil {
			return nil, err
		}
		for _, e := range edges {
			if ok, err := admissible(ctx, r, cfg, e); err != nil {
				return nil, err
			} else if ok {
				steps = append(steps, step{node: e.EffectiveSource(), edge: e})
			}
		}
	}
	return steps, nil
}

func admissible(ctx context.Context, r Reader, cfg TrailConfig, e *graph.Edge) (bool, error) {
	if !edgeAllowed(cfg.EdgeFilter, e.Kind) {
		return false, nil
	}
	if e.Kind == graph.EdgeCall && cfg.CallerScope == ScopeProductionOnly {
		if e.FileNodeID != nil {
			fileNode, err := r.GetNode(ctx, *e.FileNodeID)
			if err == nil && looksLikeTestFile(fileNode.QualifiedName) {
				return false, nil
			}
		}
	}
	if e.Kind == graph.EdgeCall && !cfg.ShowUtilityCalls {
		target, err := r.GetNode(ctx, e.EffectiveTarget())
		if err == nil && graph.IsSkipListed(target.SerializedName) {
			return false, nil
		}
	}
	return true, nil
}

// bfs performs the single-frontier breadth-first traversal shared by
// Neighborhood, AllReferenced, and AllReferencing trail modes.
func bfs(ctx context.Context, r Reader, cfg TrailConfig, dir TrailDirection) (*GraphResponse, error) {
	depthMap := map[graph.NodeID]int{cfg.RootID: 0}
	edgeByID := make(map[graph.EdgeID]*graph.Edge)
	queue := []graph.NodeID{cfg.RootID}
	truncated := false

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		curDepth := depthMap[cur]
		if cfg.Depth > 0 && curDepth >= cfg.Depth {
			continue
		}

		steps, err := neighbors(ctx, r, cfg, cur, dir)
		if err != nil {
			return nil, fmt.Errorf("trail: expand %d: %w", cur, err)
		}
		sort.Slice(steps, func(i, j int) bool { return steps[i].edge.ID < steps[j].edge.ID })

		for _, s := range steps {
			if len(depthMap) >= cfg.MaxNodes {
				truncated = true
				break
			}
			node, err := r.GetNode(ctx, s.node)
			if err != nil || !nodeAllowed(cfg.NodeFilter, node.Kind) {
				continue
			}
			edgeByID[s.edge.ID] = s.edge
			if _, seen := depthMap[s.node]; !seen {
				depthMap[s.node] = curDepth + 1
				queue = append(queue, s.node)
			}
		}
		if truncated {
			break
		}
	}

	nodeIDs := make(map[graph.NodeID]bool, len(depthMap))
	for id := range depthMap {
		nodeIDs[id] = true
	}
	nodes, err := loadNodes(ctx, r, nodeIDs)
	if err != nil {
		return nil, err
	}
	edges := make([]*graph.Edge, 0, len(edgeByID))
	for _, e := range edgeByID {
		edges = append(edges, e)
	}

	return &GraphResponse{
		Nodes:     nodes,
		Edges:     stripUncertainSkipListed(dedupeEdges(edges), nodeMap(nodes)),
		Truncated: truncated,
		DepthMap:  depthMap,
	}, nil
}

// toTarget runs two capped frontiers — forward from root, reverse from
// target — and admits a node only when the sum of its distances from
// both ends fits within cfg.Depth (0 meaning unbounded, subject still to
// cfg.MaxNodes). The canonical path is reconstructed greedily from root,
// at each step choosing the forward neighbor minimizing
// (distance-to-target, node id).
func toTarget(ctx context.Context, r Reader, cfg TrailConfig) (*GraphResponse, error) {
	frontierCap := cfg.MaxNodes * 4

	distFromRoot, fwdEdges, err := boundedBFS(ctx, r, cfg, cfg.RootID, DirectionOutgoing, frontierCap)
	if err != nil {
		return nil, fmt.Errorf("trail: forward frontier: %w", err)
	}
	distFromTarget, revEdges, err := boundedBFS(ctx, r, cfg, *cfg.TargetID, DirectionIncoming, frontierCap)
	if err != nil {
		return nil, fmt.Errorf("trail: reverse frontier: %w", err)
	}

	type admitted struct {
		id    graph.NodeID
		total int
		dRoot int
	}
	var candidates []admitted
	for id, dRoot := range distFromRoot {
		dTarget, ok := distFromTarget[id]
		if !ok {
			continue
		}
		total := dRoot + dTarget
		if cfg.Depth > 0 && total > cfg.Depth {
			continue
		}
		candidates = append(candidates, admitted{id: id, total: total, dRoot: dRoot})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].total != candidates[j].total {
			return candidates[i].total < candidates[j].total
		}
		if candidates[i].dRoot != candidates[j].dRoot {
			return candidates[i].dRoot < candidates[j].dRoot
		}
		return candidates[i].id < candidates[j].id
	})

	truncated := false
	if len(candidates) > cfg.MaxNodes {
		candidates = candidates[:cfg.MaxNodes]
		truncated = true
	}

	selected := make(map[graph.NodeID]bool, len(candidates))
	depthMap := make(map[graph.NodeID]int, len(candidates))
	for _, c := range candidates {
		selected[c.id] = true
		depthMap[c.id] = c.dRoot
	}

	edgeByID := make(map[graph.EdgeID]*graph.Edge)
	for _, e := range fwdEdges {
		if selected[e.EffectiveSource()] && selected[e.EffectiveTarget()] {
			edgeByID[e.ID] = e
		}
	}
	for _, e := range revEdges {
		if selected[e.EffectiveSource()] && selected[e.EffectiveTarget()] {
			edgeByID[e.ID] = e
		}
	}

	path := reconstructPath(ctx, r, cfg, distFromTarget, selected)

	nodes, err := loadNodes(ctx, r, selected)
	if err != nil {
		return nil, err
	}
	edges := make([]*graph.Edge, 0, len(edgeByID))
	for _, e := range edgeByID {
		edges = append(edges, e)
	}

	return &GraphResponse{
		Nodes:     nodes,
		Edges:     stripUncertainSkipListed(dedupeEdges(edges), nodeMap(nodes)),
		Truncated: truncated,
		DepthMap:  depthMap,
		Path:      path,
	}, nil
}

// boundedBFS runs a single-direction BFS from start up to cap nodes,
// applying cfg's edge/node/caller-scope/utility filters, returning each
// visited node's distance from start and every edge traversed.
func boundedBFS(ctx context.Context, r Reader, cfg TrailConfig, start graph.NodeID, dir TrailDirection, frontierCap int) (map[graph.NodeID]int, []*graph.Edge, error) {
	dist := map[graph.NodeID]int{start: 0}
	var edges []*graph.Edge
	queue := []graph.NodeID{start}

	for len(queue) > 0 && len(dist) < frontierCap {
		cur := queue[0]
		queue = queue[1:]
		curDist := dist[cur]

		steps, err := neighbors(ctx, r, cfg, cur, dir)
		if err != nil {
			return nil, nil, err
		}
		sort.Slice(steps, func(i, j int) bool { return steps[i].edge.ID < steps[j].edge.ID })

		for _, s := range steps {
			if len(dist) >= frontierCap {
				break
			}
			node, err := r.GetNode(ctx, s.node)
			if err != nil || !nodeAllowed(cfg.NodeFilter, node.Kind) {
				continue
			}
			edges = append(edges, s.edge)
			if _, seen := dist[s.node]; !seen {
				dist[s.node] = curDist + 1
				queue = append(queue, s.node)
			}
		}
	}
	return dist, edges, nil
}

// reconstructPath walks root to target greedily, at each hop choosing the
// admitted forward neighbor with the smallest distance-to-target (ties
// broken by node id), stopping once it reaches the target or runs out of
// admitted neighbors.
func reconstructPath(ctx context.Context, r Reader, cfg TrailConfig, distFromTarget map[graph.NodeID]int, selected map[graph.NodeID]bool) []graph.NodeID {
	if !selected[cfg.RootID] || !selected[*cfg.TargetID] {
		return nil
	}
	path := []graph.NodeID{cfg.RootID}
	visited := map[graph.NodeID]bool{cfg.RootID: true}
	cur := cfg.RootID

	for cur != *cfg.TargetID {
		steps, err := neighbors(ctx, r, cfg, cur, DirectionOutgoing)
		if err != nil {
			return nil
		}
		best := graph.NodeID(0)
		bestDist := -1
		haveBest := false
		for _, s := range steps {
			if !selected[s.node] || visited[s.node] {
				continue
			}
			d, ok := distFromTarget[s.node]
			if !ok {
				continue
			}
			if !haveBest || d < bestDist || (d == bestDist && s.node < best) {
				best = s.node
				bestDist = d
				haveBest = true
			}
		}
		if !haveBest {
			return nil
		}
		path = append(path, best)
		visited[best] = true
		cur = best
	}
	return path
}
