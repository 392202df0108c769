package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/codestory/codestory/internal/graph"
)

const numEdgeCols = 11

// Formula-derived batch size: SQLite has a 999 bind variable limit.
const edgesBatchSize = 999 / numEdgeCols // = 90

// InsertEdgesBatch inserts edges in chunked multi-row statements and
// returns their assigned IDs in the same order.
func (s *Store) InsertEdgesBatch(ctx context.Context, edges []*graph.Edge) ([]graph.EdgeID, error) {
	ids := make([]graph.EdgeID, len(edges))
	for i := 0; i < len(edges); i += edgesBatchSize {
		end := i + edgesBatchSize
		if end > len(edges) {
			end = len(edges)
		}
		chunk := edges[i:end]

		var b strings.Builder
		b.WriteString(`INSERT INTO edge (kind, source_id, target_id, resolved_source_id, resolved_target_id,
			file_node_id, line, confidence, certainty, callsite_identity, candidate_target_node_ids) VALUES `)
		args := make([]any, 0, len(chunk)*numEdgeCols)
		for j, e := range chunk {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString("(?,?,?,?,?,?,?,?,?,?,?)")
			var resolvedSource, resolvedTarget, fileNodeID any
			if e.ResolvedSource != nil {
				resolvedSource = int64(*e.ResolvedSource)
			}
			if e.ResolvedTarget != nil {
				resolvedTarget = int64(*e.ResolvedTarget)
			}
			if e.FileNodeID != nil {
				fileNodeID = int64(*e.FileNodeID)
			}
			var confidence, certainty any
			if e.Confidence != nil {
				confidence = *e.Confidence
			}
			if e.Certainty != nil {
				certainty = string(*e.Certainty)
			}
			args = append(args, string(e.Kind), int64(e.Source), int64(e.Target), resolvedSource, resolvedTarget,
				fileNodeID, e.Line, confidence, certainty, e.CallsiteIdentity, encodeCandidates(e.CandidateTargets))
		}
		b.WriteString(" RETURNING id")

		rows, err := s.q.QueryContext(ctx, b.String(), args...)
		if err != nil {
			return nil, fmt.Errorf("insert edges batch: %w", err)
		}
		for j := range chunk {
			if !rows.Next() {
				rows.Close()
				return nil, fmt.Errorf("insert edges batch: expected %d ids, got %d", len(chunk), j)
			}
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan inserted edge id: %w", err)
			}
			ids[i+j] = graph.EdgeID(id)
		}
		rows.Close()
	}
	return ids, nil
}

// UpdateEdgeResolution persists a resolver decision for an already
// inserted edge: resolved target, confidence, certainty and candidate
// list all move together.
func (s *Store) UpdateEdgeResolution(ctx context.Context, id graph.EdgeID, resolvedTarget *graph.NodeID, confidence *float64, certainty *graph.Certainty, candidates []graph.NodeID) error {
	var target, conf, cert any
	if resolvedTarget != nil {
		target = int64(*resolvedTarget)
	}
	if confidence != nil {
		conf = *confidence
	}
	if certainty != nil {
		cert = string(*certainty)
	}
	_, err := s.q.ExecContext(ctx, `UPDATE edge SET resolved_target_id = ?, confidence = ?, certainty = ?, candidate_target_node_ids = ?
		WHERE id = ?`, target, conf, cert, encodeCandidates(candidates), int64(id))
	if err != nil {
		return fmt.Errorf("update edge resolution: %w", err)
	}
	return nil
}

func scanEdge(row rowScanner) (*graph.Edge, error) {
	var e graph.Edge
	var kind string
	var resolvedSource, resolvedTarget, fileNodeID *int64
	var confidence *float64
	var certainty *string
	var candidateIDs string
	if err := row.Scan(&e.ID, &kind, &e.Source, &e.Target, &resolvedSource, &resolvedTarget,
		&fileNodeID, &e.Line, &confidence, &certainty, &e.CallsiteIdentity, &candidateIDs); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan edge: %w", err)
	}
	e.Kind = graph.EdgeKind(kind)
	if resolvedSource != nil {
		id := graph.NodeID(*resolvedSource)
		e.ResolvedSource = &id
	}
	if resolvedTarget != nil {
		id := graph.NodeID(*resolvedTarget)
		e.ResolvedTarget = &id
	}
	if fileNodeID != nil {
		id := graph.NodeID(*fileNodeID)
		e.FileNodeID = &id
	}
	e.Confidence = confidence
	if certainty != nil {
		c := graph.Certainty(*certainty)
		e.Certainty = &c
	}
	e.CandidateTargets = decodeCandidates(candidateIDs)
	return &e, nil
}

const edgeSelectColumns = `id, kind, source_id, target_id, resolved_source_id, resolved_target_id,
	file_node_id, line, confidence, certainty, callsite_identity, candidate_target_node_ids`

// FindEdgeByCallsite supports idempotent CALL-edge upsert: a re-extracted
// callsite with the same identity updates in place instead of
// duplicating.
func (s *Store) FindEdgeByCallsite(ctx context.Context, callsiteIdentity string) (*graph.Edge, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+edgeSelectColumns+` FROM edge WHERE callsite_identity = ?`, callsiteIdentity)
	return scanEdge(row)
}

// EdgeIDsOwnedBy returns the IDs of every edge whose file_node_id is
// fileID, for the re-index write path to diff against the callsites it
// claimed.
func (s *Store) EdgeIDsOwnedBy(ctx context.Context, fileID graph.NodeID) ([]graph.EdgeID, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id FROM edge WHERE file_node_id = ?`, int64(fileID))
	if err != nil {
		return nil, fmt.Errorf("edge ids owned by file: %w", err)
	}
	defer rows.Close()

	var out []graph.EdgeID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owned edge id: %w", err)
		}
		out = append(out, graph.EdgeID(id))
	}
	return out, rows.Err()
}

// UpdateEdgeEndpoints repoints an existing edge's raw endpoints (and
// callsite line) at replacement nodes, leaving any recorded resolution
// untouched. Used when a re-extracted callsite claims its prior edge row
// by identity instead of inserting a duplicate.
func (s *Store) UpdateEdgeEndpoints(ctx context.Context, id graph.EdgeID, source, target graph.NodeID, line int) error {
	_, err := s.q.ExecContext(ctx, `UPDATE edge SET source_id = ?, target_id = ?, line = ? WHERE id = ?`,
		int64(source), int64(target), line, int64(id))
	if err != nil {
		return fmt.Errorf("update edge endpoints: %w", err)
	}
	return nil
}

// DeleteEdges removes edge rows by ID in chunks.
func (s *Store) DeleteEdges(ctx context.Context, ids []graph.EdgeID) error {
	const chunkSize = 400
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = int64(id)
		}
		if _, err := s.q.ExecContext(ctx, `DELETE FROM edge WHERE id IN (`+joinPlaceholders(len(chunk))+`)`, args...); err != nil {
			return fmt.Errorf("delete edges: %w", err)
		}
	}
	return nil
}

// ClearResolutionsReferencing nulls any resolved endpoint that points at
// one of ids, across every file. A cleared target also drops confidence
// and certainty so resolution fields stay all-or-nothing; the next
// resolve pass recomputes the binding against whatever replaced the
// removed nodes. This is what lets one file's re-index leave other
// files' cross-file edges in place instead of cascading them away.
func (s *Store) ClearResolutionsReferencing(ctx context.Context, ids []graph.NodeID) error {
	const chunkSize = 400
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = int64(id)
		}
		ph := joinPlaceholders(len(chunk))

		if _, err := s.q.ExecContext(ctx, `UPDATE edge SET resolved_target_id = NULL, confidence = NULL, certainty = NULL
			WHERE resolved_target_id IN (`+ph+`)`, args...); err != nil {
			return fmt.Errorf("clear resolved targets: %w", err)
		}
		if _, err := s.q.ExecContext(ctx, `UPDATE edge SET resolved_source_id = NULL WHERE resolved_source_id IN (`+ph+`)`, args...); err != nil {
			return fmt.Errorf("clear resolved sources: %w", err)
		}
	}
	return nil
}

// EdgesFromSource returns every edge whose source endpoint is node.
func (s *Store) EdgesFromSource(ctx context.Context, node graph.NodeID) ([]*graph.Edge, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+edgeSelectColumns+` FROM edge WHERE source_id = ? OR resolved_source_id = ?`,
		int64(node), int64(node))
	if err != nil {
		return nil, fmt.Errorf("edges from source: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// EdgesToTarget returns every edge whose effective target is node,
// optionally filtered to one kind. Backs reverse-reference queries.
func (s *Store) EdgesToTarget(ctx context.Context, node graph.NodeID, kind graph.EdgeKind) ([]*graph.Edge, error) {
	var rows interface {
		Next() bool
		Scan(...any) error
		Err() error
		Close() error
	}
	var err error
	if kind != "" {
		rows, err = s.q.QueryContext(ctx, `SELECT `+edgeSelectColumns+` FROM edge
			WHERE kind = ? AND (resolved_target_id = ? OR (resolved_target_id IS NULL AND target_id = ?))`,
			string(kind), int64(node), int64(node))
	} else {
		rows, err = s.q.QueryContext(ctx, `SELECT `+edgeSelectColumns+` FROM edge
			WHERE resolved_target_id = ? OR (resolved_target_id IS NULL AND target_id = ?)`, int64(node), int64(node))
	}
	if err != nil {
		return nil, fmt.Errorf("edges to target: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// AllEdgesOfKind returns every edge of kind regardless of resolution
// state. A resolver pass re-resolves from this full set rather than
// just the unresolved subset: new nodes from a freshly indexed file can
// make a previously-resolved edge elsewhere eligible for a better
// (same-file/same-module) match, so only a full recompute is guaranteed
// to match a from-scratch run.
func (s *Store) AllEdgesOfKind(ctx context.Context, kind graph.EdgeKind) ([]*graph.Edge, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+edgeSelectColumns+` FROM edge WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("all edges of kind: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// ReferencedNodeIDs reports, for each id in ids, whether any edge still
// references it on either endpoint, raw or resolved. A raw endpoint
// keeps its UNKNOWN placeholder alive even after the edge is rebound:
// the placeholder carries the callee text that later resolve passes
// rebind from when a resolution is cleared (for instance because the
// target's file was re-indexed or removed). Used by orphan pruning to
// find UNKNOWN nodes with no referring edges left at all.
func (s *Store) ReferencedNodeIDs(ctx context.Context, ids []graph.NodeID) (map[graph.NodeID]bool, error) {
	referenced := make(map[graph.NodeID]bool, len(ids))
	if len(ids) == 0 {
		return referenced, nil
	}
	const chunkSize = 150 // bound in IN-list used 4x below, stays under the 999-var limit
	for i := 0; i < len(ids); i += chunkSize {
		end := i + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[i:end]
		args := make([]any, len(chunk))
		for j, id := range chunk {
			args[j] = int64(id)
		}
		ph := joinPlaceholders(len(chunk))

		query := `SELECT DISTINCT v FROM (
			SELECT source_id AS v FROM edge WHERE source_id IN (` + ph + `)
			UNION
			SELECT target_id AS v FROM edge WHERE target_id IN (` + ph + `)
			UNION
			SELECT resolved_source_id AS v FROM edge WHERE resolved_source_id IN (` + ph + `)
			UNION
			SELECT resolved_target_id AS v FROM edge WHERE resolved_target_id IN (` + ph + `)
		)`
		rows, err := s.q.QueryContext(ctx, query, append(append(append(append([]any{}, args...), args...), args...), args...)...)
		if err != nil {
			return nil, fmt.Errorf("referenced node ids: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan referenced node id: %w", err)
			}
			referenced[graph.NodeID(id)] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return referenced, nil
}

func scanEdges(rows interface {
	Next() bool
	Scan(...any) error
	Err() error
}) ([]*graph.Edge, error) {
	var out []*graph.Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
